package request

import "encoding/json"

// SendMessageRequest 发消息请求
// Parameters 的形状由 Type 决定，写入前经参数解析器校验
// 使用位置:
//   - internal/handler/message_handler.go: SendMessageHandler
//   - internal/service/message/service.go: SendMessage
type SendMessageRequest struct {
	Type              string          `json:"type" binding:"required,oneof=MESSAGE FILE SPECIAL_TRADE SPECIAL_OFFER SYSTEM INTERNAL_TRANSFER"`
	Text              string          `json:"text" binding:"omitempty,max=1024"`
	Parameters        json.RawMessage `json:"parameters" binding:"omitempty"`
	ExternalRequestId string          `json:"external_request_id" binding:"omitempty,max=40"`
}
