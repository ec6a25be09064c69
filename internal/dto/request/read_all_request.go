package request

// ReadAllRequest 全部已读请求
// Statuses 限定要清零的上下文状态集合，缺省为默认列表集合
// 使用位置:
//   - internal/handler/profile_handler.go: ReadAllMessagesHandler
type ReadAllRequest struct {
	Statuses []string `json:"statuses" binding:"omitempty,dive,oneof=ACTIVE SYSTEM MARKETING"`
}
