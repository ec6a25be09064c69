// Package model 定义数据库实体模型
// 本文件定义聊天模型，聊天是两个客户之间的 1:1 会话容器
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Chat 聊天模型
// 对应数据库 chat 表
// 只保存双方共享的不可变信息；参与者各自的可变视图状态在 ChatContext 中
type Chat struct {
	gorm.Model

	// Uuid 聊天唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:聊天uuid"`

	// PairKey 无序参与者对的归一化键（小 id + ':' + 大 id）
	// 唯一索引保证同一对客户只有一个聊天，幂等建聊依赖此约束而不是先查后插
	PairKey string `gorm:"column:pair_key;uniqueIndex;type:char(73);not null;comment:参与者对归一化键"`

	// OriginatorId 发起建聊的客户
	OriginatorId string `gorm:"column:originator_id;index;type:char(36);not null;comment:发起者customer_id"`

	// PartnerId 聊天另一方
	PartnerId string `gorm:"column:partner_id;index;type:char(36);not null;comment:对方customer_id"`

	// LastMessageId 最新消息指针（反向引用，非所有权边）
	// 与 Message 表在同一事务内更新，消息行始终归 Message 存储所有
	LastMessageId sql.NullInt64 `gorm:"column:last_message_id;type:bigint;comment:最新消息雪花ID"`
}

// TableName 指定表名
func (Chat) TableName() string {
	return "chat"
}

// BuildPairKey 计算无序参与者对的归一化键（小 id 在前）
// 同一对客户无论谁发起建聊，得到的键相同
func BuildPairKey(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}

// Counterpart 返回聊天中 customerId 的对方
func (c *Chat) Counterpart(customerId string) string {
	if c.OriginatorId == customerId {
		return c.PartnerId
	}
	return c.OriginatorId
}

// HasParticipant 判断 customerId 是否为聊天参与者
func (c *Chat) HasParticipant(customerId string) bool {
	return c.OriginatorId == customerId || c.PartnerId == customerId
}
