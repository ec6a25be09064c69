package mysql

import (
	"context"
	"time"

	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/enum/marketing/marketing_status_enum"
	"trade_chat_server/pkg/pagination"

	"gorm.io/gorm"
)

type marketingRepository struct {
	db *gorm.DB
}

// newMarketingRepository 创建营销消息 Repository
func newMarketingRepository(db *gorm.DB) MarketingRepository {
	return &marketingRepository{db: db}
}

// FindByUuid 按 UUID 查找营销消息
func (r *marketingRepository) FindByUuid(ctx context.Context, uuid string) (*model.MarketingMessage, error) {
	var msg model.MarketingMessage
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询营销消息 uuid=%s", uuid)
	}
	return &msg, nil
}

// FindByExternalRequestId 幂等重放查找
func (r *marketingRepository) FindByExternalRequestId(ctx context.Context, externalRequestId string) (*model.MarketingMessage, error) {
	var msg model.MarketingMessage
	if err := r.db.WithContext(ctx).
		Where("external_request_id = ?", externalRequestId).
		First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询幂等营销消息 external_request_id=%s", externalRequestId)
	}
	return &msg, nil
}

// Create 创建营销消息
func (r *marketingRepository) Create(ctx context.Context, msg *model.MarketingMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapDBError(err, "创建营销消息")
	}
	return nil
}

// Save 保存营销消息全量字段
func (r *marketingRepository) Save(ctx context.Context, msg *model.MarketingMessage) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return wrapDBErrorf(err, "保存营销消息 uuid=%s", msg.Uuid)
	}
	return nil
}

// ListPage 游标分页列出营销消息
// 排序键 (created_at, uuid) 倒序
// visibleOnly 为接收方视角：只看 ACTIVE 且已到 start_time 的消息
func (r *marketingRepository) ListPage(ctx context.Context, statuses []string, visibleOnly bool, now time.Time, cur *pagination.Cursor, limit int) ([]model.MarketingMessage, error) {
	query := r.db.WithContext(ctx).Model(&model.MarketingMessage{})
	if visibleOnly {
		// PENDING 只表示尚未到期，到期即对接收方可见，无需后台任务翻转状态
		query = query.Where("status IN ? AND start_time IS NOT NULL AND start_time <= ?",
			[]string{marketing_status_enum.ACTIVE, marketing_status_enum.PENDING}, now)
	} else if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	if cur != nil {
		at := time.Unix(0, cur.SortTime)
		if cur.Prev {
			query = query.Where("(created_at > ? OR (created_at = ? AND uuid > ?))", at, at, cur.ID).
				Order("created_at ASC").Order("uuid ASC")
		} else {
			query = query.Where("(created_at < ? OR (created_at = ? AND uuid < ?))", at, at, cur.ID).
				Order("created_at DESC").Order("uuid DESC")
		}
	} else {
		query = query.Order("created_at DESC").Order("uuid DESC")
	}

	var messages []model.MarketingMessage
	if err := query.Limit(limit).Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "查询营销消息列表")
	}
	if cur != nil && cur.Prev {
		reverse(messages)
	}
	return messages, nil
}

// CountVisibleAfter 统计 after 之后的可见营销消息数
// 营销未读数 = 客户营销已读位置之后的可见消息数
func (r *marketingRepository) CountVisibleAfter(ctx context.Context, now, after time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.MarketingMessage{}).
		Where("status IN ? AND start_time IS NOT NULL AND start_time <= ?",
			[]string{marketing_status_enum.ACTIVE, marketing_status_enum.PENDING}, now)
	if !after.IsZero() {
		query = query.Where("created_at > ?", after)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "统计营销未读数")
	}
	return count, nil
}
