package respond

// ContactRespond 联系人响应
// 使用位置:
//   - internal/service/contact/service.go
type ContactRespond struct {
	CustomerId  string `json:"customer_id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	CreateTime  string `json:"create_time"`
}

// ContactListRespond 联系人列表响应
type ContactListRespond struct {
	Contacts      []ContactRespond `json:"contacts"`
	NextPageToken string           `json:"next_page_token,omitempty"`
	PrevPageToken string           `json:"prev_page_token,omitempty"`
}
