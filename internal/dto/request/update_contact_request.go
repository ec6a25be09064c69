package request

// UpdateContactRequest 更新联系人类型请求
// 使用位置:
//   - internal/handler/contact_handler.go: UpdateContactHandler
type UpdateContactRequest struct {
	Type string `json:"type" binding:"required,oneof=TRUSTED BLOCKED"`
}
