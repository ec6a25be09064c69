package constants

const (
	CHANNEL_SIZE         = 100 // 事件通道大小
	CHAT_NAME_MAX_LEN    = 64  // 聊天名称最大长度
	DEFAULT_PAGE_LIMIT   = 20  // 列表默认分页大小
	MAX_PAGE_LIMIT       = 100 // 列表最大分页大小
	CONFLICT_MAX_RETRIES = 3   // 并发冲突内部重试次数上限
	REDIS_TIMEOUT        = 1   // redis 缓存过期时间（分钟）

	// SYSTEM_SENDER_ID 系统消息的保留发送方，所有系统聊天都挂在它与客户之间
	SYSTEM_SENDER_ID = "00000000-0000-0000-0000-000000000001"

	// OFFER_HASH_LEN 报价 hash 长度
	OFFER_HASH_LEN = 11
)
