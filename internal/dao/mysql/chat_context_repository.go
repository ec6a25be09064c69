package mysql

import (
	"context"
	"time"

	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/pagination"

	"gorm.io/gorm"
)

type chatContextRepository struct {
	db *gorm.DB
}

// newChatContextRepository 创建聊天上下文 Repository
func newChatContextRepository(db *gorm.DB) ChatContextRepository {
	return &chatContextRepository{db: db}
}

// FindByChatAndCustomer 查找指定参与者的上下文
func (r *chatContextRepository) FindByChatAndCustomer(ctx context.Context, chatId, customerId string) (*model.ChatContext, error) {
	var cc model.ChatContext
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND customer_id = ?", chatId, customerId).
		First(&cc).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天上下文 chat=%s customer=%s", chatId, customerId)
	}
	return &cc, nil
}

// FindByChat 查找聊天的全部上下文（两行）
func (r *chatContextRepository) FindByChat(ctx context.Context, chatId string) ([]model.ChatContext, error) {
	var ccs []model.ChatContext
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatId).Find(&ccs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天上下文 chat=%s", chatId)
	}
	return ccs, nil
}

// Create 创建上下文
func (r *chatContextRepository) Create(ctx context.Context, cc *model.ChatContext) error {
	if err := r.db.WithContext(ctx).Create(cc).Error; err != nil {
		return wrapDBError(err, "创建聊天上下文")
	}
	return nil
}

// ListByCustomer 游标分页列出客户的聊天上下文
// 排序键 (activity_time, chat_id) 倒序；游标编码上一页最后一项的排序键，
// 并发插入新聊天不会使已持有的游标漂移
func (r *chatContextRepository) ListByCustomer(ctx context.Context, customerId string, statuses []string, q string, cur *pagination.Cursor, limit int) ([]model.ChatContext, error) {
	query := r.db.WithContext(ctx).Model(&model.ChatContext{}).
		Where("customer_id = ?", customerId)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if q != "" {
		query = query.Where("chat_name LIKE ?", "%"+q+"%")
	}

	if cur != nil {
		at := time.Unix(0, cur.SortTime)
		if cur.Prev {
			// 向前翻页：取位置之前的条目，反向扫描后由调用方恢复展示顺序
			query = query.Where("(activity_time > ? OR (activity_time = ? AND chat_id > ?))", at, at, cur.ID).
				Order("activity_time ASC").Order("chat_id ASC")
		} else {
			query = query.Where("(activity_time < ? OR (activity_time = ? AND chat_id < ?))", at, at, cur.ID).
				Order("activity_time DESC").Order("chat_id DESC")
		}
	} else {
		query = query.Order("activity_time DESC").Order("chat_id DESC")
	}

	var ccs []model.ChatContext
	if err := query.Limit(limit).Find(&ccs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天列表 customer=%s", customerId)
	}
	if cur != nil && cur.Prev {
		reverse(ccs)
	}
	return ccs, nil
}

// FindByCustomerAndStatuses 列出客户指定状态集合的全部上下文
func (r *chatContextRepository) FindByCustomerAndStatuses(ctx context.Context, customerId string, statuses []string) ([]model.ChatContext, error) {
	var ccs []model.ChatContext
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status IN ?", customerId, statuses).
		Find(&ccs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天上下文 customer=%s", customerId)
	}
	return ccs, nil
}

// UpdateStatus 更新上下文状态
func (r *chatContextRepository) UpdateStatus(ctx context.Context, chatId, customerId, status string) error {
	if err := r.db.WithContext(ctx).Model(&model.ChatContext{}).
		Where("chat_id = ? AND customer_id = ?", chatId, customerId).
		Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "更新上下文状态 chat=%s customer=%s", chatId, customerId)
	}
	return nil
}

// UpdateUnread 更新未读数与已读位置
// readMessageId 为 0 时只更新未读数，保持已读位置不变
func (r *chatContextRepository) UpdateUnread(ctx context.Context, chatId, customerId string, unread int, readMessageId int64) error {
	updates := map[string]interface{}{"unread_count": unread}
	if readMessageId != 0 {
		updates["read_message_id"] = readMessageId
	}
	if err := r.db.WithContext(ctx).Model(&model.ChatContext{}).
		Where("chat_id = ? AND customer_id = ?", chatId, customerId).
		Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新未读数 chat=%s customer=%s", chatId, customerId)
	}
	return nil
}

// TouchActivity 更新聊天双方上下文的 activity_time
func (r *chatContextRepository) TouchActivity(ctx context.Context, chatId string, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.ChatContext{}).
		Where("chat_id = ?", chatId).
		Update("activity_time", at).Error; err != nil {
		return wrapDBErrorf(err, "更新活跃时间 chat=%s", chatId)
	}
	return nil
}

// SumUnreadByStatuses 汇总客户指定状态集合的未读数
func (r *chatContextRepository) SumUnreadByStatuses(ctx context.Context, customerId string, statuses []string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ChatContext{}).
		Select("COALESCE(SUM(unread_count), 0)").
		Where("customer_id = ? AND status IN ?", customerId, statuses).
		Scan(&total).Error; err != nil {
		return 0, wrapDBErrorf(err, "汇总未读数 customer=%s", customerId)
	}
	return total, nil
}

// reverse 原地反转切片（向前翻页恢复展示顺序用）
func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
