package mysql

import (
	"context"
	"strconv"
	"time"

	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/enum/message/message_status_enum"
	"trade_chat_server/pkg/enum/message/message_type_enum"
	"trade_chat_server/pkg/pagination"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// newMessageRepository 创建消息 Repository
func newMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// FindByUuid 在指定聊天内按雪花 ID 查找消息
// 同时用 chat_id 过滤：跨聊天的消息 ID 对调用者不可见，按不存在处理
func (r *messageRepository) FindByUuid(ctx context.Context, chatId string, uuid int64) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND uuid = ?", chatId, uuid).
		First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 chat=%s uuid=%d", chatId, uuid)
	}
	return &msg, nil
}

// FindByExternalRequestId 幂等重放查找
func (r *messageRepository) FindByExternalRequestId(ctx context.Context, chatId, authorId, externalRequestId string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND author_id = ? AND external_request_id = ?", chatId, authorId, externalRequestId).
		First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询幂等消息 chat=%s author=%s", chatId, authorId)
	}
	return &msg, nil
}

// FindLast 查找聊天内最新一条消息
func (r *messageRepository) FindLast(ctx context.Context, chatId string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatId).
		Order("send_time DESC").Order("uuid DESC").
		First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询最新消息 chat=%s", chatId)
	}
	return &msg, nil
}

// Create 创建消息
// 幂等键唯一索引冲突返回 CodeAlreadyExists，调用方回查重放
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// Save 保存消息全量字段
func (r *messageRepository) Save(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Save(message).Error; err != nil {
		return wrapDBErrorf(err, "保存消息 uuid=%d", message.Uuid)
	}
	return nil
}

// ListPage 游标分页列出聊天消息
// 排序键 (send_time, uuid)，默认升序；游标编码上一页最后一项的排序键，
// 并发追加新消息不会改变已持有游标所指页面的内容
func (r *messageRepository) ListPage(ctx context.Context, chatId string, cur *pagination.Cursor, limit int, desc bool) ([]model.Message, error) {
	query := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ?", chatId)

	// 展示顺序与扫描顺序：向前翻页取反扫描，取完后恢复展示顺序
	scanDesc := desc
	if cur != nil {
		at := time.Unix(0, cur.SortTime)
		id, _ := strconv.ParseInt(cur.ID, 10, 64)
		forward := !cur.Prev
		if forward != desc {
			// 升序向后 / 倒序向前：位置之后
			query = query.Where("(send_time > ? OR (send_time = ? AND uuid > ?))", at, at, id)
			scanDesc = false
		} else {
			// 倒序向后 / 升序向前：位置之前
			query = query.Where("(send_time < ? OR (send_time = ? AND uuid < ?))", at, at, id)
			scanDesc = true
		}
	}
	if scanDesc {
		query = query.Order("send_time DESC").Order("uuid DESC")
	} else {
		query = query.Order("send_time ASC").Order("uuid ASC")
	}

	var messages []model.Message
	if err := query.Limit(limit).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息列表 chat=%s", chatId)
	}
	if cur != nil && cur.Prev {
		reverse(messages)
	}
	return messages, nil
}

// CountUnread 统计对方发出的未读消息数
// 未读定义：作者为对方、未隐藏、排序键在已读位置之后
func (r *messageRepository) CountUnread(ctx context.Context, chatId, counterpartId string, after time.Time, afterId int64) (int64, error) {
	var count int64
	if err := r.unreadQuery(ctx, chatId, counterpartId, after, afterId).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计未读数 chat=%s", chatId)
	}
	return count, nil
}

// FindUnread 列出全部未读消息，按创建顺序
func (r *messageRepository) FindUnread(ctx context.Context, chatId, counterpartId string, after time.Time, afterId int64) ([]model.Message, error) {
	var messages []model.Message
	if err := r.unreadQuery(ctx, chatId, counterpartId, after, afterId).
		Order("send_time ASC").Order("uuid ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询未读消息 chat=%s", chatId)
	}
	return messages, nil
}

func (r *messageRepository) unreadQuery(ctx context.Context, chatId, counterpartId string, after time.Time, afterId int64) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND author_id = ? AND status <> ?", chatId, counterpartId, message_status_enum.HIDDEN)
	if !after.IsZero() {
		query = query.Where("(send_time > ? OR (send_time = ? AND uuid > ?))", after, after, afterId)
	}
	return query
}

// FindOfferByHash 按报价 hash 查找聊天内的 SPECIAL_OFFER 消息
func (r *messageRepository) FindOfferByHash(ctx context.Context, chatId, offerHash string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND offer_hash = ? AND type = ?", chatId, offerHash, message_type_enum.SPECIAL_OFFER).
		Order("uuid DESC").
		First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询报价消息 chat=%s hash=%s", chatId, offerHash)
	}
	return &msg, nil
}
