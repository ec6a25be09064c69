// Package chat_start_result_enum 定义建聊可行性检查结果
package chat_start_result_enum

const (
	COULD_NOT_START = "COULD_NOT_START" // 不能建聊
	ALREADY_STARTED = "ALREADY_STARTED" // 聊天已存在
	COULD_START     = "COULD_START"     // 可以建聊
)

// COULD_NOT_START 的补充错误码
const (
	ErrUserBanned      = "user_banned"      // 对方账号被禁用
	ErrChatBlocked     = "chat_blocked"     // 双方存在拉黑关系
	ErrPrivacySettings = "privacy_settings" // 对方隐私设置不允许
	ErrCouldNotStart   = "could_not_start"  // 其他原因（如对方不存在）
)
