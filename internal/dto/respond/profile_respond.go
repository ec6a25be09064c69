package respond

// InboxChannelRespond 个人收件通道信息
// 推送通道本体由外部通知层维护，这里只签发订阅参数
type InboxChannelRespond struct {
	Channel          string `json:"channel"`
	SubscribeKey     string `json:"subscribe_key"`
	Token            string `json:"token"`
	ExpireTime       string `json:"expire_time"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// ProfileRespond 客户消息服务状态响应
// 使用位置:
//   - internal/service/profile/service.go: GetProfile
type ProfileRespond struct {
	CustomerId           string               `json:"customer_id"`
	AcceptChatMessages   string               `json:"accept_chat_messages"`
	ChatsUnreadCount     int64                `json:"chats_unread_count"`
	SystemUnreadCount    int64                `json:"system_unread_count"`
	MarketingUnreadCount int64                `json:"marketing_unread_count"`
	TradesUnreadCount    int64                `json:"trades_unread_count"`
	InboxChannel         *InboxChannelRespond `json:"inbox_channel,omitempty"`
}
