package request

// ListContactsRequest 联系人列表请求
// 使用位置:
//   - internal/handler/contact_handler.go: ListContactsHandler
type ListContactsRequest struct {
	Q         string   `form:"q" binding:"omitempty,max=64"`
	Types     []string `form:"types" binding:"omitempty,dive,oneof=TRUSTED BLOCKED"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=100"`
	PageToken string   `form:"page_token"`
}
