// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db             *gorm.DB                 // GORM 数据库实例
	Chat           ChatRepository           // 聊天 Repository
	ChatContext    ChatContextRepository    // 聊天上下文 Repository
	Message        MessageRepository        // 消息 Repository
	Contact        ContactRepository        // 联系人 Repository
	Marketing      MarketingRepository      // 营销消息 Repository
	TradeContext   TradeContextRepository   // 交易上下文 Repository
	ProfileContext ProfileContextRepository // 客户状态 Repository
}

// NewRepositories 创建所有 Repository 实例
// db: GORM 数据库实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		Chat:           newChatRepository(db),
		ChatContext:    newChatContextRepository(db),
		Message:        newMessageRepository(db),
		Contact:        newContactRepository(db),
		Marketing:      newMarketingRepository(db),
		TradeContext:   newTradeContextRepository(db),
		ProfileContext: newProfileContextRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 使用事务 db 创建新的 Repositories 实例
		return fn(NewRepositories(tx))
	})
}
