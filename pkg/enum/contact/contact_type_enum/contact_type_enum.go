// Package contact_type_enum 定义联系人类型
// 联系人级别的 BLOCKED 与聊天级别的 BLOCKED 相互独立
package contact_type_enum

const (
	TRUSTED = "TRUSTED" // 信任联系人
	BLOCKED = "BLOCKED" // 拉黑联系人
)

// Valid 校验类型取值是否合法
func Valid(t string) bool {
	return t == TRUSTED || t == BLOCKED
}
