// Package chat_status_enum 定义聊天上下文状态
// 状态属于单个参与者的 ChatContext，而不是 Chat 本身
package chat_status_enum

const (
	ACTIVE    = "ACTIVE"    // 正常聊天
	SYSTEM    = "SYSTEM"    // 系统通知聊天
	BLOCKED   = "BLOCKED"   // 当前参与者已拉黑此聊天
	HIDDEN    = "HIDDEN"    // 当前参与者已隐藏此聊天
	MARKETING = "MARKETING" // 营销消息聊天
)

// Valid 校验状态取值是否合法
func Valid(s string) bool {
	switch s {
	case ACTIVE, SYSTEM, BLOCKED, HIDDEN, MARKETING:
		return true
	}
	return false
}

// DefaultListSet 列表查询未显式指定 statuses 时的默认集合
// HIDDEN 与 BLOCKED 的聊天需要显式请求才返回
func DefaultListSet() []string {
	return []string{ACTIVE, SYSTEM, MARKETING}
}
