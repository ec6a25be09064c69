package respond

// MarketingRespond 营销消息响应
type MarketingRespond struct {
	MarketingId string `json:"marketing_id"`
	Text        string `json:"text"`
	Title       string `json:"title,omitempty"`
	Link        string `json:"link,omitempty"`
	LinkText    string `json:"link_text,omitempty"`
	Status      string `json:"status"`
	StartTime   string `json:"start_time,omitempty"`
	Author      string `json:"author"`
	CreateTime  string `json:"create_time"`
}

// MarketingListRespond 营销消息列表响应
type MarketingListRespond struct {
	Messages      []MarketingRespond `json:"messages"`
	NextPageToken string             `json:"next_page_token,omitempty"`
	PrevPageToken string             `json:"prev_page_token,omitempty"`
}
