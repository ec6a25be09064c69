package request

// CreateMarketingRequest 创建营销消息请求（内部接口，marketing scope）
// 使用位置:
//   - internal/handler/marketing_handler.go: CreateMarketingHandler
type CreateMarketingRequest struct {
	Text              string `json:"text" binding:"required,max=1024"`
	Title             string `json:"title" binding:"omitempty,max=128"`
	Link              string `json:"link" binding:"omitempty,url,max=255"`
	LinkText          string `json:"link_text" binding:"omitempty,max=64"`
	StartTime         string `json:"start_time" binding:"omitempty"` // RFC3339，缺省立即可见
	Author            string `json:"author" binding:"required,email"`
	ExternalRequestId string `json:"external_request_id" binding:"omitempty,max=40"`
}
