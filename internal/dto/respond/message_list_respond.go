package respond

// MessageListRespond 消息列表响应
type MessageListRespond struct {
	Messages      []MessageRespond `json:"messages"`
	NextPageToken string           `json:"next_page_token,omitempty"`
	PrevPageToken string           `json:"prev_page_token,omitempty"`
}
