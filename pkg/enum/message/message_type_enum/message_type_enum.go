// Package message_type_enum 定义消息类型
package message_type_enum

const (
	MESSAGE           = "MESSAGE"           // 普通文本消息
	FILE              = "FILE"              // 附件消息
	SPECIAL_TRADE     = "SPECIAL_TRADE"     // 交易结构化消息
	SPECIAL_OFFER     = "SPECIAL_OFFER"     // 报价结构化消息
	SYSTEM            = "SYSTEM"            // 系统通知消息
	INTERNAL_TRANSFER = "INTERNAL_TRANSFER" // 站内转账消息
)

// Valid 校验类型取值是否合法
func Valid(t string) bool {
	switch t {
	case MESSAGE, FILE, SPECIAL_TRADE, SPECIAL_OFFER, SYSTEM, INTERNAL_TRANSFER:
		return true
	}
	return false
}

// HasParameters 该类型是否携带结构化参数
// MESSAGE/FILE 只带文本或附件，不允许携带 parameters
func HasParameters(t string) bool {
	switch t {
	case SPECIAL_TRADE, SPECIAL_OFFER, SYSTEM, INTERNAL_TRANSFER:
		return true
	}
	return false
}
