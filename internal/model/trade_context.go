package model

import (
	"gorm.io/gorm"
)

// TradeContext 客户视角的交易视图状态
// 交易本身归外部交易引擎所有，这里只维护未读数和显示名
type TradeContext struct {
	gorm.Model
	TradeHash   string `gorm:"column:trade_hash;uniqueIndex:idx_trade_customer;type:varchar(40);not null;comment:交易hash"`
	CustomerId  string `gorm:"column:customer_id;index;uniqueIndex:idx_trade_customer;type:char(36);not null;comment:参与者customer_id"`
	TradeName   string `gorm:"column:trade_name;type:varchar(64);not null;comment:交易显示名"`
	UnreadCount int    `gorm:"column:unread_count;not null;default:0;comment:未读数"`
}

func (TradeContext) TableName() string {
	return "trade_context"
}
