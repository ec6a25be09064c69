// Package message_status_enum 定义消息投递状态机
// NEW → SENT → DELIVERED → READ，UPDATED 仅可从 DELIVERED/READ 进入，
// HIDDEN 可从任意状态进入，任何状态不允许回退
package message_status_enum

const (
	NEW       = "NEW"       // 已接收但尚未进入投递管道
	SENT      = "SENT"      // 已发送
	DELIVERED = "DELIVERED" // 已投递到接收方
	READ      = "READ"      // 接收方已读
	UPDATED   = "UPDATED"   // 投递后被作者编辑过
	HIDDEN    = "HIDDEN"    // 软删除/风控隐藏
)

// CanDeliver 判断能否由当前状态置为 DELIVERED
// DELIVERED/READ/UPDATED 为幂等空操作
func CanDeliver(s string) bool {
	return s == SENT
}

// DeliverNoop 判断 DELIVERED 操作对当前状态是否为空操作
func DeliverNoop(s string) bool {
	return s == DELIVERED || s == READ || s == UPDATED
}

// CanRead 判断能否由当前状态置为 READ
// NEW 尚未进入投递管道，不允许直接已读
func CanRead(s string) bool {
	return s == SENT || s == DELIVERED || s == UPDATED
}

// CanUpdate 判断作者编辑后状态是否迁移为 UPDATED
// SENT 状态编辑只更新内容与 update_time，状态保持 SENT
func CanUpdate(s string) bool {
	return s == DELIVERED || s == READ
}
