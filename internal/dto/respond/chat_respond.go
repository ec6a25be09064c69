package respond

// ChatRespond 聊天响应（调用者视角）
// 使用位置:
//   - internal/service/chat/service.go: StartChat, GetChat, ListChats
type ChatRespond struct {
	ChatId       string          `json:"chat_id"`
	PartnerId    string          `json:"partner_id"`
	ChatName     string          `json:"chat_name"`
	Status       string          `json:"status"`
	UnreadCount  int             `json:"unread_count"`
	ActivityTime string          `json:"activity_time"`
	LastMessage  *MessageRespond `json:"last_message,omitempty"`
}

// ChatListRespond 聊天列表响应
type ChatListRespond struct {
	Chats         []ChatRespond `json:"chats"`
	NextPageToken string        `json:"next_page_token,omitempty"`
	PrevPageToken string        `json:"prev_page_token,omitempty"`
}
