package mysql

import (
	"context"

	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/pagination"

	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// newContactRepository 创建联系人 Repository
func newContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// FindByOwnerAndContact 根据归属者和联系人查找关系
func (r *contactRepository) FindByOwnerAndContact(ctx context.Context, ownerId, contactId string) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND contact_id = ?", ownerId, contactId).
		First(&contact).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联系人 owner=%s contact=%s", ownerId, contactId)
	}
	return &contact, nil
}

// Create 创建联系人关系
func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return wrapDBError(err, "创建联系人")
	}
	return nil
}

// UpdateType 更新联系类型
func (r *contactRepository) UpdateType(ctx context.Context, ownerId, contactId, contactType string) error {
	if err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("owner_id = ? AND contact_id = ?", ownerId, contactId).
		Update("type", contactType).Error; err != nil {
		return wrapDBErrorf(err, "更新联系类型 owner=%s contact=%s", ownerId, contactId)
	}
	return nil
}

// ListPage 游标分页列出联系人
// 排序键 (display_name, contact_id) 升序
func (r *contactRepository) ListPage(ctx context.Context, ownerId string, types []string, q string, cur *pagination.Cursor, limit int) ([]model.Contact, error) {
	query := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("owner_id = ?", ownerId)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	if q != "" {
		query = query.Where("display_name LIKE ?", "%"+q+"%")
	}

	if cur != nil {
		if cur.Prev {
			query = query.Where("(display_name < ? OR (display_name = ? AND contact_id < ?))", cur.SortText, cur.SortText, cur.ID).
				Order("display_name DESC").Order("contact_id DESC")
		} else {
			query = query.Where("(display_name > ? OR (display_name = ? AND contact_id > ?))", cur.SortText, cur.SortText, cur.ID).
				Order("display_name ASC").Order("contact_id ASC")
		}
	} else {
		query = query.Order("display_name ASC").Order("contact_id ASC")
	}

	var contacts []model.Contact
	if err := query.Limit(limit).Find(&contacts).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联系人列表 owner=%s", ownerId)
	}
	if cur != nil && cur.Prev {
		reverse(contacts)
	}
	return contacts, nil
}
