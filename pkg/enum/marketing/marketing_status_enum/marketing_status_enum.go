// Package marketing_status_enum 定义营销消息状态
package marketing_status_enum

const (
	PENDING = "PENDING" // 已创建，未到 start_time，对用户不可见
	ACTIVE  = "ACTIVE"  // start_time 到达后对用户可见
	DELETED = "DELETED" // 已删除
)

// Valid 校验状态取值是否合法
func Valid(s string) bool {
	return s == PENDING || s == ACTIVE || s == DELETED
}
