// Package contact 实现联系人业务逻辑
package contact

import (
	"context"
	"time"

	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/dto/respond"
	"trade_chat_server/internal/model"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/pkg/enum/contact/contact_type_enum"
	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/pagination"

	"go.uber.org/zap"
)

// contactService 联系人业务逻辑实现
type contactService struct {
	repos    *mysql.Repositories
	profiles external.ProfileDirectory
}

// NewContactService 构造函数
func NewContactService(repos *mysql.Repositories, profiles external.ProfileDirectory) *contactService {
	return &contactService{repos: repos, profiles: profiles}
}

func toRespond(c *model.Contact) *respond.ContactRespond {
	return &respond.ContactRespond{
		CustomerId:  c.ContactId,
		DisplayName: c.DisplayName,
		Type:        c.Type,
		CreateTime:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// AddContact 添加联系人
// (owner, contact) 对唯一，重复添加返回 AlreadyExists
func (s *contactService) AddContact(ctx context.Context, callerId string, req request.AddContactRequest) (*respond.ContactRespond, error) {
	if req.CustomerId == callerId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能添加自己为联系人")
	}

	displayName := req.DisplayName
	if displayName == "" {
		// 未指定显示名时取对方资料中的显示名
		customer, err := s.profiles.GetCustomer(ctx, req.CustomerId)
		if err != nil {
			if errorx.GetCode(err) == errorx.CodeNotFound {
				return nil, errorx.Newf(errorx.CodeNotFound, "客户不存在: %s", req.CustomerId)
			}
			zap.L().Warn("resolve contact display name failed", zap.Error(err))
			displayName = req.CustomerId
		} else {
			displayName = customer.DisplayName
		}
	}

	contactType := req.Type
	if contactType == "" {
		contactType = contact_type_enum.TRUSTED
	}

	contact := &model.Contact{
		OwnerId:     callerId,
		ContactId:   req.CustomerId,
		DisplayName: displayName,
		Type:        contactType,
	}
	if err := s.repos.Contact.Create(ctx, contact); err != nil {
		return nil, err
	}
	return toRespond(contact), nil
}

// GetContact 获取联系人
func (s *contactService) GetContact(ctx context.Context, callerId, contactId string) (*respond.ContactRespond, error) {
	contact, err := s.repos.Contact.FindByOwnerAndContact(ctx, callerId, contactId)
	if err != nil {
		return nil, err
	}
	return toRespond(contact), nil
}

// UpdateContact 更新联系类型
// 拉黑/解除拉黑走这里，软状态变更，从不硬删除关系行
func (s *contactService) UpdateContact(ctx context.Context, callerId, contactId string, req request.UpdateContactRequest) (*respond.ContactRespond, error) {
	contact, err := s.repos.Contact.FindByOwnerAndContact(ctx, callerId, contactId)
	if err != nil {
		return nil, err
	}
	if contact.Type != req.Type {
		if err := s.repos.Contact.UpdateType(ctx, callerId, contactId, req.Type); err != nil {
			return nil, err
		}
		contact.Type = req.Type
	}
	return toRespond(contact), nil
}

// ListContacts 游标分页列出联系人，(display_name, contact_id) 升序
func (s *contactService) ListContacts(ctx context.Context, callerId string, req request.ListContactsRequest) (*respond.ContactListRespond, error) {
	limit := pagination.NormalizeLimit(req.Limit)

	var cur *pagination.Cursor
	if req.PageToken != "" {
		decoded, err := pagination.Decode(req.PageToken)
		if err != nil {
			return nil, err
		}
		cur = &decoded
	}

	contacts, err := s.repos.Contact.ListPage(ctx, callerId, req.Types, req.Q, cur, limit)
	if err != nil {
		return nil, err
	}

	rsp := &respond.ContactListRespond{Contacts: make([]respond.ContactRespond, 0, len(contacts))}
	for i := range contacts {
		rsp.Contacts = append(rsp.Contacts, *toRespond(&contacts[i]))
	}

	if len(contacts) == limit {
		last := contacts[len(contacts)-1]
		rsp.NextPageToken = pagination.Encode(pagination.Cursor{
			SortText: last.DisplayName,
			ID:       last.ContactId,
		})
	}
	if cur != nil && len(contacts) > 0 {
		first := contacts[0]
		rsp.PrevPageToken = pagination.Encode(pagination.Cursor{
			SortText: first.DisplayName,
			ID:       first.ContactId,
			Prev:     true,
		})
	}
	return rsp, nil
}
