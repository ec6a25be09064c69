package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// MarketingMessage 营销消息
// 独立实体，不归属任何聊天；只有 status=ACTIVE 且 start_time<=now 时对用户可见
type MarketingMessage struct {
	gorm.Model

	// Uuid 营销消息唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:营销消息uuid"`

	// Text 消息正文
	Text string `gorm:"column:text;type:TEXT;not null;comment:正文"`

	// Title 标题，可为空
	Title string `gorm:"column:title;type:varchar(128);comment:标题"`

	// Link 可选跳转链接
	Link string `gorm:"column:link;type:varchar(255);comment:跳转链接"`

	// LinkText 链接文案
	LinkText string `gorm:"column:link_text;type:varchar(64);comment:链接文案"`

	// Status 状态，见 pkg/enum/marketing/marketing_status_enum
	Status string `gorm:"column:status;type:varchar(16);not null;comment:状态"`

	// StartTime 对用户可见的起始时间
	StartTime sql.NullTime `gorm:"column:start_time;index;comment:可见起始时间"`

	// Author 创建者邮箱
	Author string `gorm:"column:author;type:varchar(128);not null;comment:创建者邮箱"`

	// ExternalRequestId 幂等键，调用方提供
	ExternalRequestId sql.NullString `gorm:"column:external_request_id;type:varchar(40);uniqueIndex;comment:幂等键"`
}

func (MarketingMessage) TableName() string {
	return "marketing_message"
}
