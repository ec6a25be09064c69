// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储聊天消息
package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Message 消息模型
// 对应数据库 message 表
// 存储文本、附件以及交易/报价/转账/系统等结构化消息
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64 类型 ID，时间有序，
	// 作为 (create_time, message_id) 排序键的平局裁决
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatId 所属聊天 UUID
	// 二级索引 (chat_id, created_at, uuid) 支撑消息列表的游标分页
	ChatId string `gorm:"column:chat_id;index:idx_chat_order,priority:1;type:char(36);not null;comment:聊天uuid"`

	// AuthorId 消息作者
	AuthorId string `gorm:"column:author_id;index;type:char(36);not null;comment:作者customer_id"`

	// Type 消息类型
	// 取值见 pkg/enum/message/message_type_enum
	Type string `gorm:"column:type;type:varchar(20);not null;comment:消息类型"`

	// Text 消息文本，最长 1024 字符，与结构化 parameters 互斥
	Text string `gorm:"column:text;type:TEXT;comment:消息文本"`

	// Parameters 结构化参数，JSON 格式
	// 形状由 Type 决定，写入前经 params.Resolver 校验
	Parameters string `gorm:"column:parameters;type:TEXT;comment:结构化参数JSON"`

	// Attachments 附件描述符数组，JSON 格式
	// 只保存附件服务返回的 {filename, uri, thumbnail_uri}，字节不落库
	Attachments string `gorm:"column:attachments;type:TEXT;comment:附件JSON"`

	// Status 消息投递状态
	// 状态机见 pkg/enum/message/message_status_enum
	Status string `gorm:"column:status;type:varchar(16);not null;comment:投递状态"`

	// SendTime 消息创建时间（不可变，插入后不再修改）
	// 同一聊天内严格递增；gorm.Model.CreatedAt 不够精确时以此列为准
	SendTime time.Time `gorm:"column:send_time;index:idx_chat_order,priority:2;not null;comment:创建时间"`

	// ContentUpdatedAt 内容更新时间
	// 创建后任何变更（编辑、报价撤销等）都会盖章；未变更过为 NULL
	ContentUpdatedAt sql.NullTime `gorm:"column:content_updated_at;comment:内容更新时间"`

	// PrevMessageId 同一聊天内上一条消息的雪花 ID
	// 构成聊天内的单链，客户端用它做无缝增量同步
	PrevMessageId sql.NullInt64 `gorm:"column:prev_message_id;type:bigint;comment:上一条消息ID"`

	// ExternalRequestId 幂等键，调用方提供，最长 40 字符
	// 唯一索引 (chat_id, author_id, external_request_id) 在数据库层面关闭
	// 两个相同请求并发提交的竞态，幂等重放不靠先查后插
	ExternalRequestId sql.NullString `gorm:"column:external_request_id;type:varchar(40);uniqueIndex:idx_idempotency,priority:2;comment:幂等键"`

	// AuthorKey 幂等索引的复合列（chat_id + author_id）
	// MySQL 复合唯一索引列，避免把 chat_id/author_id 重复进同一个索引的前缀限制
	AuthorKey string `gorm:"column:author_key;type:char(73);uniqueIndex:idx_idempotency,priority:1;not null;comment:chat+author复合键"`

	// OfferHash 报价 hash，SPECIAL_OFFER/SPECIAL_TRADE 消息携带
	OfferHash string `gorm:"column:offer_hash;index;type:varchar(40);comment:报价hash"`

	// TradeHash 交易 hash，SPECIAL_TRADE 消息携带
	TradeHash string `gorm:"column:trade_hash;type:varchar(40);comment:交易hash"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
