package respond

// MarkItemRespond 批量标记操作的单条结果
// 批量投递/已读整体不失败，逐条报告成功与否
type MarkItemRespond struct {
	MessageId string `json:"message_id"`
	Ok        bool   `json:"ok"`
	Code      int    `json:"code,omitempty"`
	Msg       string `json:"msg,omitempty"`
}

// MarkMessagesRespond 批量标记消息响应
type MarkMessagesRespond struct {
	Results []MarkItemRespond `json:"results"`
}
