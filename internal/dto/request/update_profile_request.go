package request

// UpdateProfileRequest 更新消息服务隐私设置请求
// 使用位置:
//   - internal/handler/profile_handler.go: UpdateProfileHandler
type UpdateProfileRequest struct {
	AcceptChatMessages string `json:"accept_chat_messages" binding:"required,oneof=YES NO TRUSTED_ONLY TRUSTED_AND_TRADE_PARTNERS"`
}
