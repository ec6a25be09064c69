package respond

import "encoding/json"

// AttachmentRespond 附件描述符
type AttachmentRespond struct {
	Filename     string `json:"filename"`
	URI          string `json:"uri"`
	ThumbnailURI string `json:"thumbnail_uri,omitempty"`
}

// MessageRespond 消息响应
// MessageId 为雪花 ID 的十进制字符串，避免前端 JS 精度丢失
// 使用位置:
//   - internal/service/message/service.go: 各读写操作
type MessageRespond struct {
	MessageId         string              `json:"message_id"`
	ChatId            string              `json:"chat_id"`
	AuthorId          string              `json:"author_id"`
	Type              string              `json:"type"`
	Text              string              `json:"text,omitempty"`
	Parameters        json.RawMessage     `json:"parameters,omitempty"`
	Attachments       []AttachmentRespond `json:"attachments,omitempty"`
	Status            string              `json:"status"`
	CreateTime        string              `json:"create_time"`
	UpdateTime        string              `json:"update_time,omitempty"`
	PrevMessageId     string              `json:"prev_message_id,omitempty"`
	ExternalRequestId string              `json:"external_request_id,omitempty"`
}
