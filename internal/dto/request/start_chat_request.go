package request

// StartChatRequest 建聊请求
// 使用位置:
//   - internal/handler/chat_handler.go: StartChatHandler
//   - internal/service/chat/service.go: StartChat
type StartChatRequest struct {
	PartnerId string              `json:"partner_id" binding:"required,uuid"`
	ChatName  string              `json:"chat_name" binding:"omitempty,max=64"`
	Message   *SendMessageRequest `json:"message" binding:"omitempty"`
}
