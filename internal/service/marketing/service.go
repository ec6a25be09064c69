// Package marketing 实现营销消息业务逻辑
// 营销消息独立于聊天存在，未删除且 start_time<=now 时对用户可见
package marketing

import (
	"context"
	"database/sql"
	"time"

	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/dto/respond"
	"trade_chat_server/internal/infrastructure/eventbus"
	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/enum/marketing/marketing_status_enum"
	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// marketingService 营销消息业务逻辑实现
type marketingService struct {
	repos *mysql.Repositories
	clock clockwork.Clock
	pub   eventbus.Publisher
}

// NewMarketingService 构造函数
func NewMarketingService(repos *mysql.Repositories, clock clockwork.Clock, pub eventbus.Publisher) *marketingService {
	return &marketingService{repos: repos, clock: clock, pub: pub}
}

func toRespond(m *model.MarketingMessage) *respond.MarketingRespond {
	rsp := &respond.MarketingRespond{
		MarketingId: m.Uuid,
		Text:        m.Text,
		Title:       m.Title,
		Link:        m.Link,
		LinkText:    m.LinkText,
		Status:      m.Status,
		Author:      m.Author,
		CreateTime:  m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.StartTime.Valid {
		rsp.StartTime = m.StartTime.Time.UTC().Format(time.RFC3339)
	}
	return rsp
}

func parseStartTime(raw string) (sql.NullTime, error) {
	if raw == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return sql.NullTime{}, errorx.Wrap(err, errorx.CodeInvalidParam, "start_time 不是合法的 RFC3339 时间")
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}, nil
}

// Create 创建营销消息
// 幂等依赖 external_request_id 唯一索引，重复请求重放首次结果
// 缺省 start_time 时立即可见（ACTIVE，start_time=now）
func (s *marketingService) Create(ctx context.Context, req request.CreateMarketingRequest) (*respond.MarketingRespond, error) {
	startTime, err := parseStartTime(req.StartTime)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	status := marketing_status_enum.ACTIVE
	if !startTime.Valid {
		startTime = sql.NullTime{Time: now, Valid: true}
	} else if startTime.Time.After(now) {
		status = marketing_status_enum.PENDING
	}

	msg := &model.MarketingMessage{
		Uuid:      uuid.NewString(),
		Text:      req.Text,
		Title:     req.Title,
		Link:      req.Link,
		LinkText:  req.LinkText,
		Status:    status,
		StartTime: startTime,
		Author:    req.Author,
	}
	if req.ExternalRequestId != "" {
		msg.ExternalRequestId = sql.NullString{String: req.ExternalRequestId, Valid: true}
	}

	if err := s.repos.Marketing.Create(ctx, msg); err != nil {
		if errorx.GetCode(err) == errorx.CodeAlreadyExists && req.ExternalRequestId != "" {
			existing, fErr := s.repos.Marketing.FindByExternalRequestId(ctx, req.ExternalRequestId)
			if fErr != nil {
				return nil, fErr
			}
			return toRespond(existing), nil
		}
		return nil, err
	}

	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMarketingCreated,
		Key:        msg.Uuid,
		OccurredAt: now,
	})
	return toRespond(msg), nil
}

// Update 更新营销消息
// DELETED 为终态，只允许向 DELETED 迁移，不允许从 DELETED 迁出
func (s *marketingService) Update(ctx context.Context, marketingId string, req request.UpdateMarketingRequest) (*respond.MarketingRespond, error) {
	msg, err := s.repos.Marketing.FindByUuid(ctx, marketingId)
	if err != nil {
		return nil, err
	}
	if msg.Status == marketing_status_enum.DELETED {
		return nil, errorx.New(errorx.CodeInvalidState, "营销消息已删除")
	}

	if req.Text != "" {
		msg.Text = req.Text
	}
	if req.Title != "" {
		msg.Title = req.Title
	}
	if req.Link != "" {
		msg.Link = req.Link
	}
	if req.LinkText != "" {
		msg.LinkText = req.LinkText
	}
	if req.StartTime != "" {
		startTime, err := parseStartTime(req.StartTime)
		if err != nil {
			return nil, err
		}
		msg.StartTime = startTime
		// 起始时间改到未来时回到 PENDING，到达后由可见性过滤放行
		if startTime.Time.After(s.clock.Now().UTC()) && msg.Status == marketing_status_enum.ACTIVE {
			msg.Status = marketing_status_enum.PENDING
		}
	}
	if req.Status != "" {
		msg.Status = req.Status
	}

	if err := s.repos.Marketing.Save(ctx, msg); err != nil {
		return nil, err
	}
	return toRespond(msg), nil
}

// List 管理视角列表，可按状态过滤，包含 PENDING/DELETED
func (s *marketingService) List(ctx context.Context, req request.ListMarketingRequest) (*respond.MarketingListRespond, error) {
	return s.list(ctx, req, false)
}

// ListVisible 接收方视角列表，只含未删除且已到 start_time 的消息
func (s *marketingService) ListVisible(ctx context.Context, req request.ListMarketingRequest) (*respond.MarketingListRespond, error) {
	return s.list(ctx, req, true)
}

func (s *marketingService) list(ctx context.Context, req request.ListMarketingRequest, visibleOnly bool) (*respond.MarketingListRespond, error) {
	limit := pagination.NormalizeLimit(req.Limit)

	var cur *pagination.Cursor
	if req.PageToken != "" {
		decoded, err := pagination.Decode(req.PageToken)
		if err != nil {
			return nil, err
		}
		cur = &decoded
	}

	now := s.clock.Now().UTC()
	messages, err := s.repos.Marketing.ListPage(ctx, req.Statuses, visibleOnly, now, cur, limit)
	if err != nil {
		return nil, err
	}

	rsp := &respond.MarketingListRespond{Messages: make([]respond.MarketingRespond, 0, len(messages))}
	for i := range messages {
		rsp.Messages = append(rsp.Messages, *toRespond(&messages[i]))
	}

	if len(messages) == limit {
		last := messages[len(messages)-1]
		rsp.NextPageToken = pagination.Encode(pagination.Cursor{
			SortTime: last.CreatedAt.UnixNano(),
			ID:       last.Uuid,
			Desc:     true,
		})
	}
	if cur != nil && len(messages) > 0 {
		first := messages[0]
		rsp.PrevPageToken = pagination.Encode(pagination.Cursor{
			SortTime: first.CreatedAt.UnixNano(),
			ID:       first.Uuid,
			Desc:     true,
			Prev:     true,
		})
	}
	return rsp, nil
}
