package mysql

import (
	"context"

	"trade_chat_server/internal/model"

	"gorm.io/gorm"
)

type profileContextRepository struct {
	db *gorm.DB
}

func newProfileContextRepository(db *gorm.DB) ProfileContextRepository {
	return &profileContextRepository{db: db}
}

// FindByCustomer 查找客户状态行
func (r *profileContextRepository) FindByCustomer(ctx context.Context, customerId string) (*model.ProfileContext, error) {
	var pc model.ProfileContext
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerId).First(&pc).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询客户状态 customer_id=%s", customerId)
	}
	return &pc, nil
}

// Create 创建客户状态行
func (r *profileContextRepository) Create(ctx context.Context, pc *model.ProfileContext) error {
	if err := r.db.WithContext(ctx).Create(pc).Error; err != nil {
		return wrapDBErrorf(err, "创建客户状态 customer_id=%s", pc.CustomerId)
	}
	return nil
}

// Save 保存客户状态行全量字段
func (r *profileContextRepository) Save(ctx context.Context, pc *model.ProfileContext) error {
	if err := r.db.WithContext(ctx).Save(pc).Error; err != nil {
		return wrapDBErrorf(err, "保存客户状态 customer_id=%s", pc.CustomerId)
	}
	return nil
}
