package request

// AddContactRequest 添加联系人请求
// 使用位置:
//   - internal/handler/contact_handler.go: AddContactHandler
type AddContactRequest struct {
	CustomerId  string `json:"customer_id" binding:"required,uuid"`
	DisplayName string `json:"display_name" binding:"omitempty,max=64"`
	Type        string `json:"type" binding:"omitempty,oneof=TRUSTED BLOCKED"`
}
