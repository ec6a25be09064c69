package request

// UpdateMarketingRequest 更新营销消息请求（内部接口，marketing scope）
// 使用位置:
//   - internal/handler/marketing_handler.go: UpdateMarketingHandler
type UpdateMarketingRequest struct {
	Text      string `json:"text" binding:"omitempty,max=1024"`
	Title     string `json:"title" binding:"omitempty,max=128"`
	Link      string `json:"link" binding:"omitempty,url,max=255"`
	LinkText  string `json:"link_text" binding:"omitempty,max=64"`
	StartTime string `json:"start_time" binding:"omitempty"`
	Status    string `json:"status" binding:"omitempty,oneof=PENDING ACTIVE DELETED"`
}
