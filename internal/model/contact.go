package model

import (
	"gorm.io/gorm"
)

// Contact 联系人关系
// (owner_id, contact_id) 唯一；只改 type，从不硬删除
// 联系人级别的拉黑与聊天级别的拉黑相互独立，两个标志各自维护
type Contact struct {
	gorm.Model
	OwnerId     string `gorm:"column:owner_id;index;uniqueIndex:idx_owner_contact;type:char(36);not null;comment:归属customer_id"`
	ContactId   string `gorm:"column:contact_id;uniqueIndex:idx_owner_contact;type:char(36);not null;comment:联系人customer_id"`
	DisplayName string `gorm:"column:display_name;type:varchar(64);not null;comment:联系人显示名"`
	Type        string `gorm:"column:type;type:varchar(16);not null;comment:联系类型 TRUSTED/BLOCKED"`
}

func (Contact) TableName() string {
	return "contact"
}
