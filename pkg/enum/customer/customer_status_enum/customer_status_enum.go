// Package customer_status_enum 定义客户在线状态（由外部资料服务提供）
package customer_status_enum

const (
	ONLINE  = "ONLINE"
	OFFLINE = "OFFLINE"
	BANNED  = "BANNED" // 账号被平台禁用，禁止建聊
)
