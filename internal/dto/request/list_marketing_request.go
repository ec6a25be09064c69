package request

// ListMarketingRequest 营销消息列表请求
// 管理视角可按状态过滤；接收方视角只返回可见消息
// 使用位置:
//   - internal/handler/marketing_handler.go: ListMarketingHandler
type ListMarketingRequest struct {
	Statuses  []string `form:"statuses" binding:"omitempty,dive,oneof=PENDING ACTIVE DELETED"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=100"`
	PageToken string   `form:"page_token"`
}
