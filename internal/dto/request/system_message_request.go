package request

import "encoding/json"

// SystemMessageRequest 系统消息注入请求（内部接口，internal scope）
// 为目标客户在其系统聊天内追加一条 SYSTEM 消息
// 使用位置:
//   - internal/handler/message_handler.go: SystemMessageHandler
type SystemMessageRequest struct {
	CustomerId        string          `json:"customer_id" binding:"required,uuid"`
	Text              string          `json:"text" binding:"required,max=1024"`
	Parameters        json.RawMessage `json:"parameters" binding:"omitempty"`
	ExternalRequestId string          `json:"external_request_id" binding:"omitempty,max=40"`
}
