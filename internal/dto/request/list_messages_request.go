package request

// ListMessagesRequest 消息列表请求
// PageToken 与 LastMessageId 二选一：后者用于打开聊天时从已读位置增量同步
// 使用位置:
//   - internal/handler/message_handler.go: ListMessagesHandler
type ListMessagesRequest struct {
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
	PageToken     string `form:"page_token"`
	OrderDesc     bool   `form:"order_desc"`
	LastMessageId int64  `form:"last_message_id" binding:"omitempty,min=1"`
}
