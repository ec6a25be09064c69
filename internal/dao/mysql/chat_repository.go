package mysql

import (
	"context"

	"trade_chat_server/internal/model"

	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

// newChatRepository 创建聊天 Repository
func newChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindByUuid 按 UUID 查找聊天
func (r *chatRepository) FindByUuid(ctx context.Context, uuid string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&chat).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天 uuid=%s", uuid)
	}
	return &chat, nil
}

// FindByPairKey 按参与者对归一化键查找聊天
func (r *chatRepository) FindByPairKey(ctx context.Context, pairKey string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&chat).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天 pair_key=%s", pairKey)
	}
	return &chat, nil
}

// Create 创建聊天
// pair_key 唯一索引保证同一对客户只有一个聊天，冲突时返回 CodeAlreadyExists
func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return wrapDBError(err, "创建聊天")
	}
	return nil
}

// UpdateLastMessage 更新最新消息指针
func (r *chatRepository) UpdateLastMessage(ctx context.Context, chatUuid string, messageId int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("uuid = ?", chatUuid).
		Update("last_message_id", messageId).Error; err != nil {
		return wrapDBErrorf(err, "更新最新消息指针 chat=%s", chatUuid)
	}
	return nil
}
