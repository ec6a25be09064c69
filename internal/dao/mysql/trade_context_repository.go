package mysql

import (
	"context"

	"trade_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tradeContextRepository struct {
	db *gorm.DB
}

func newTradeContextRepository(db *gorm.DB) TradeContextRepository {
	return &tradeContextRepository{db: db}
}

// FindByTradeAndCustomer 查找指定客户的交易上下文
func (r *tradeContextRepository) FindByTradeAndCustomer(ctx context.Context, tradeHash, customerId string) (*model.TradeContext, error) {
	var tc model.TradeContext
	if err := r.db.WithContext(ctx).
		Where("trade_hash = ? AND customer_id = ?", tradeHash, customerId).
		First(&tc).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询交易上下文 trade_hash=%s customer_id=%s", tradeHash, customerId)
	}
	return &tc, nil
}

// Upsert 创建或更新交易上下文，以 (trade_hash, customer_id) 为冲突键
func (r *tradeContextRepository) Upsert(ctx context.Context, tc *model.TradeContext) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trade_hash"}, {Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"trade_name", "updated_at"}),
	}).Create(tc).Error; err != nil {
		return wrapDBErrorf(err, "写入交易上下文 trade_hash=%s", tc.TradeHash)
	}
	return nil
}

// IncrementUnread 未读数 +1，数据库内原子自增
func (r *tradeContextRepository) IncrementUnread(ctx context.Context, tradeHash, customerId string) error {
	result := r.db.WithContext(ctx).Model(&model.TradeContext{}).
		Where("trade_hash = ? AND customer_id = ?", tradeHash, customerId).
		UpdateColumn("unread_count", gorm.Expr("unread_count + 1"))
	if result.Error != nil {
		return wrapDBErrorf(result.Error, "自增交易未读数 trade_hash=%s", tradeHash)
	}
	if result.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "自增交易未读数 trade_hash=%s", tradeHash)
	}
	return nil
}

// ResetUnreadByCustomer 将客户的全部交易未读数清零
func (r *tradeContextRepository) ResetUnreadByCustomer(ctx context.Context, customerId string) error {
	if err := r.db.WithContext(ctx).Model(&model.TradeContext{}).
		Where("customer_id = ? AND unread_count > 0", customerId).
		UpdateColumn("unread_count", 0).Error; err != nil {
		return wrapDBErrorf(err, "清零交易未读数 customer_id=%s", customerId)
	}
	return nil
}

// SumUnreadByCustomer 汇总客户的交易未读数
func (r *tradeContextRepository) SumUnreadByCustomer(ctx context.Context, customerId string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.TradeContext{}).
		Where("customer_id = ?", customerId).
		Select("COALESCE(SUM(unread_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, wrapDBErrorf(err, "汇总交易未读数 customer_id=%s", customerId)
	}
	return total, nil
}
