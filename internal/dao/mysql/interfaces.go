// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在 repository 子包中
package mysql

import (
	"context"
	"time"

	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/pagination"
)

// ==================== Repository 接口定义 ====================

// ChatRepository 聊天数据访问接口
type ChatRepository interface {
	// FindByUuid 根据 UUID 查找聊天
	FindByUuid(ctx context.Context, uuid string) (*model.Chat, error)
	// FindByPairKey 根据参与者对归一化键查找聊天
	FindByPairKey(ctx context.Context, pairKey string) (*model.Chat, error)
	// Create 创建聊天；参与者对已存在时返回 CodeAlreadyExists
	Create(ctx context.Context, chat *model.Chat) error
	// UpdateLastMessage 更新最新消息指针
	UpdateLastMessage(ctx context.Context, chatUuid string, messageId int64) error
}

// ChatContextRepository 聊天上下文数据访问接口
// 每个参与者一行，(chat_id, customer_id) 唯一
type ChatContextRepository interface {
	// FindByChatAndCustomer 查找指定参与者的上下文
	FindByChatAndCustomer(ctx context.Context, chatId, customerId string) (*model.ChatContext, error)
	// FindByChat 查找聊天的全部（两行）上下文
	FindByChat(ctx context.Context, chatId string) ([]model.ChatContext, error)
	// Create 创建上下文
	Create(ctx context.Context, cc *model.ChatContext) error
	// ListByCustomer 游标分页列出客户的聊天上下文，activity_time 倒序
	ListByCustomer(ctx context.Context, customerId string, statuses []string, q string, cur *pagination.Cursor, limit int) ([]model.ChatContext, error)
	// FindByCustomerAndStatuses 列出客户指定状态集合的全部上下文（read-all 用）
	FindByCustomerAndStatuses(ctx context.Context, customerId string, statuses []string) ([]model.ChatContext, error)
	// UpdateStatus 更新上下文状态
	UpdateStatus(ctx context.Context, chatId, customerId, status string) error
	// UpdateUnread 更新未读数与已读位置（readMessageId 为 0 时保持不变）
	UpdateUnread(ctx context.Context, chatId, customerId string, unread int, readMessageId int64) error
	// TouchActivity 更新聊天双方上下文的 activity_time
	TouchActivity(ctx context.Context, chatId string, at time.Time) error
	// SumUnreadByStatuses 汇总客户指定状态集合的未读数
	SumUnreadByStatuses(ctx context.Context, customerId string, statuses []string) (int64, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 在指定聊天内按雪花 ID 查找消息
	FindByUuid(ctx context.Context, chatId string, uuid int64) (*model.Message, error)
	// FindByExternalRequestId 幂等重放查找
	FindByExternalRequestId(ctx context.Context, chatId, authorId, externalRequestId string) (*model.Message, error)
	// FindLast 查找聊天内最新一条消息
	FindLast(ctx context.Context, chatId string) (*model.Message, error)
	// Create 创建消息；幂等键冲突返回 CodeAlreadyExists
	Create(ctx context.Context, message *model.Message) error
	// Save 保存消息全量字段
	Save(ctx context.Context, message *model.Message) error
	// ListPage 游标分页列出聊天消息，(send_time, uuid) 排序
	ListPage(ctx context.Context, chatId string, cur *pagination.Cursor, limit int, desc bool) ([]model.Message, error)
	// CountUnread 统计对方发出的、未隐藏的、位于已读位置之后的消息数
	CountUnread(ctx context.Context, chatId, counterpartId string, after time.Time, afterId int64) (int64, error)
	// FindUnread 列出全部未读消息（read-all 用），按创建顺序
	FindUnread(ctx context.Context, chatId, counterpartId string, after time.Time, afterId int64) ([]model.Message, error)
	// FindOfferByHash 按报价 hash 查找聊天内的 SPECIAL_OFFER 消息
	FindOfferByHash(ctx context.Context, chatId, offerHash string) (*model.Message, error)
}

// ContactRepository 联系人数据访问接口
type ContactRepository interface {
	// FindByOwnerAndContact 根据归属者和联系人查找关系
	FindByOwnerAndContact(ctx context.Context, ownerId, contactId string) (*model.Contact, error)
	// Create 创建联系人关系；重复对返回 CodeAlreadyExists
	Create(ctx context.Context, contact *model.Contact) error
	// UpdateType 更新联系类型（软状态变更，从不硬删除）
	UpdateType(ctx context.Context, ownerId, contactId, contactType string) error
	// ListPage 游标分页列出联系人，(display_name, contact_id) 升序
	ListPage(ctx context.Context, ownerId string, types []string, q string, cur *pagination.Cursor, limit int) ([]model.Contact, error)
}

// MarketingRepository 营销消息数据访问接口
type MarketingRepository interface {
	// FindByUuid 根据 UUID 查找营销消息
	FindByUuid(ctx context.Context, uuid string) (*model.MarketingMessage, error)
	// FindByExternalRequestId 幂等重放查找
	FindByExternalRequestId(ctx context.Context, externalRequestId string) (*model.MarketingMessage, error)
	// Create 创建营销消息；幂等键冲突返回 CodeAlreadyExists
	Create(ctx context.Context, msg *model.MarketingMessage) error
	// Save 保存营销消息全量字段
	Save(ctx context.Context, msg *model.MarketingMessage) error
	// ListPage 游标分页，(created_at, uuid) 倒序
	// visibleOnly 为 true 时只返回 ACTIVE 且 start_time<=now 的消息
	ListPage(ctx context.Context, statuses []string, visibleOnly bool, now time.Time, cur *pagination.Cursor, limit int) ([]model.MarketingMessage, error)
	// CountVisibleAfter 统计 after 之后可见的 ACTIVE 营销消息数
	CountVisibleAfter(ctx context.Context, now, after time.Time) (int64, error)
}

// TradeContextRepository 交易上下文数据访问接口
type TradeContextRepository interface {
	// FindByTradeAndCustomer 查找指定客户的交易上下文
	FindByTradeAndCustomer(ctx context.Context, tradeHash, customerId string) (*model.TradeContext, error)
	// Upsert 创建或更新交易上下文
	Upsert(ctx context.Context, tc *model.TradeContext) error
	// IncrementUnread 未读数 +1
	IncrementUnread(ctx context.Context, tradeHash, customerId string) error
	// ResetUnreadByCustomer 将客户的全部交易未读数清零
	ResetUnreadByCustomer(ctx context.Context, customerId string) error
	// SumUnreadByCustomer 汇总客户的交易未读数
	SumUnreadByCustomer(ctx context.Context, customerId string) (int64, error)
}

// ProfileContextRepository 客户消息服务状态数据访问接口
type ProfileContextRepository interface {
	// FindByCustomer 查找客户状态行
	FindByCustomer(ctx context.Context, customerId string) (*model.ProfileContext, error)
	// Create 创建客户状态行；已存在返回 CodeAlreadyExists
	Create(ctx context.Context, pc *model.ProfileContext) error
	// Save 保存客户状态行全量字段
	Save(ctx context.Context, pc *model.ProfileContext) error
}
