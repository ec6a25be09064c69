package request

// ListChatsRequest 聊天列表请求
// 使用位置:
//   - internal/handler/chat_handler.go: ListChatsHandler
type ListChatsRequest struct {
	Statuses  []string `form:"statuses" binding:"omitempty,dive,oneof=ACTIVE SYSTEM BLOCKED HIDDEN MARKETING"`
	Q         string   `form:"q" binding:"omitempty,max=64"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=100"`
	PageToken string   `form:"page_token"`
}
