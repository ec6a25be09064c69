package request

// MarkMessagesRequest 批量标记消息请求（投递/已读）
// 使用位置:
//   - internal/handler/message_handler.go: MarkDeliveredHandler, MarkReadHandler
type MarkMessagesRequest struct {
	MessageIds []int64 `json:"message_ids" binding:"required,min=1,max=100,dive,min=1"`
}
