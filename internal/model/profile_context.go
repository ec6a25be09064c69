package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// ProfileContext 客户级别的消息服务状态
// 身份与资料字段归外部服务所有，这里只保存本服务自己的设置与读位置
type ProfileContext struct {
	gorm.Model

	// CustomerId 客户唯一标识
	CustomerId string `gorm:"column:customer_id;uniqueIndex;type:char(36);not null;comment:customer_id"`

	// AcceptChatMessages 接收陌生人消息的隐私设置
	// 取值见 pkg/enum/profile/accept_messages_enum
	AcceptChatMessages string `gorm:"column:accept_chat_messages;type:varchar(32);not null;comment:建聊隐私设置"`

	// MarketingReadTime 营销消息已读位置
	// marketing_unread_count = 此时间之后可见的 ACTIVE 营销消息数
	MarketingReadTime sql.NullTime `gorm:"column:marketing_read_time;comment:营销已读位置"`
}

func (ProfileContext) TableName() string {
	return "profile_context"
}
