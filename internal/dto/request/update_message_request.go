package request

// UpdateMessageRequest 作者编辑消息请求
// 使用位置:
//   - internal/handler/message_handler.go: UpdateMessageHandler
type UpdateMessageRequest struct {
	Text string `json:"text" binding:"required,max=1024"`
}
