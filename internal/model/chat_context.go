// Package model 定义数据库实体模型
// 本文件定义聊天上下文模型：每个参与者对同一聊天各有一行独立的可变视图状态
package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ChatContext 聊天上下文模型
// 对应数据库 chat_context 表，主键语义为 (chat_id, customer_id)
// 两个参与者的状态互相独立：一方拉黑或隐藏聊天不影响另一方的视图
type ChatContext struct {
	gorm.Model

	// ChatId 所属聊天 UUID
	ChatId string `gorm:"column:chat_id;index;uniqueIndex:idx_chat_customer;type:char(36);not null;comment:聊天uuid"`

	// CustomerId 此上下文归属的参与者
	CustomerId string `gorm:"column:customer_id;index;uniqueIndex:idx_chat_customer;type:char(36);not null;comment:参与者customer_id"`

	// ChatName 聊天显示名，默认自动命名，可被搜索
	ChatName string `gorm:"column:chat_name;type:varchar(64);not null;comment:聊天名称"`

	// Status 上下文状态
	// 取值见 pkg/enum/chat/chat_status_enum
	Status string `gorm:"column:status;type:varchar(16);not null;comment:上下文状态"`

	// UnreadCount 未读数
	// 不变式：等于对方发出的、未被隐藏的、创建时间晚于己方已读位置的消息数，恒 >= 0
	UnreadCount int `gorm:"column:unread_count;not null;default:0;comment:未读数"`

	// ReadMessageId 己方已读位置（最后已读消息的雪花 ID）
	ReadMessageId sql.NullInt64 `gorm:"column:read_message_id;type:bigint;comment:最后已读消息ID"`

	// ActivityTime 最近活跃时间
	// 不变式：= max(建聊时间, 最新消息创建时间)，作为聊天列表的排序键
	ActivityTime time.Time `gorm:"column:activity_time;index;not null;comment:最近活跃时间"`
}

// TableName 指定表名
func (ChatContext) TableName() string {
	return "chat_context"
}
