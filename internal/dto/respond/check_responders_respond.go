package respond

// CheckResponderRespond 建聊可行性检查单项结果
// Result 取值见 pkg/enum/chat/chat_start_result_enum
type CheckResponderRespond struct {
	CustomerId string `json:"customer_id"`
	Result     string `json:"result"`
	ErrorCode  string `json:"error_code,omitempty"`
}
