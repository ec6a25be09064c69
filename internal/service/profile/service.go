// Package profile 实现客户消息服务状态业务逻辑
// 身份与资料归外部服务所有，这里只管本服务自己的设置、读位置与未读数聚合
package profile

import (
	"context"
	"database/sql"
	"time"

	"trade_chat_server/internal/config"
	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/dto/respond"
	"trade_chat_server/internal/model"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/internal/service/unread"
	"trade_chat_server/pkg/enum/chat/chat_status_enum"
	"trade_chat_server/pkg/enum/message/message_status_enum"
	"trade_chat_server/pkg/enum/profile/accept_messages_enum"
	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/util/jwt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// profileService 客户消息服务状态业务逻辑实现
type profileService struct {
	repos  *mysql.Repositories
	clock  clockwork.Clock
	trades external.TradeEngine
	notify *config.NotifyConfig
}

// NewProfileService 构造函数
func NewProfileService(repos *mysql.Repositories, clock clockwork.Clock, trades external.TradeEngine, notify *config.NotifyConfig) *profileService {
	return &profileService{repos: repos, clock: clock, trades: trades, notify: notify}
}

// ensureContext 查找或创建客户状态行，隐私设置默认 YES
func (s *profileService) ensureContext(ctx context.Context, customerId string) (*model.ProfileContext, error) {
	pc, err := s.repos.ProfileContext.FindByCustomer(ctx, customerId)
	if err == nil {
		return pc, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}

	pc = &model.ProfileContext{
		CustomerId:         customerId,
		AcceptChatMessages: accept_messages_enum.YES,
	}
	if err := s.repos.ProfileContext.Create(ctx, pc); err != nil {
		// 并发首次访问输掉唯一索引竞争
		if errorx.GetCode(err) == errorx.CodeAlreadyExists {
			return s.repos.ProfileContext.FindByCustomer(ctx, customerId)
		}
		return nil, err
	}
	return pc, nil
}

// GetProfile 获取客户状态与未读数聚合
// 同时签发个人收件通道的订阅 token
func (s *profileService) GetProfile(ctx context.Context, callerId string) (*respond.ProfileRespond, error) {
	pc, err := s.ensureContext(ctx, callerId)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	var marketingReadTime time.Time
	if pc.MarketingReadTime.Valid {
		marketingReadTime = pc.MarketingReadTime.Time
	}
	aggregates, err := unread.Collect(ctx, s.repos, callerId, marketingReadTime, now)
	if err != nil {
		return nil, err
	}

	rsp := &respond.ProfileRespond{
		CustomerId:           callerId,
		AcceptChatMessages:   pc.AcceptChatMessages,
		ChatsUnreadCount:     aggregates.ChatsUnread,
		SystemUnreadCount:    aggregates.SystemUnread,
		MarketingUnreadCount: aggregates.MarketingUnread,
		TradesUnreadCount:    aggregates.TradesUnread,
	}
	rsp.InboxChannel = s.inboxChannel(callerId, now)
	return rsp, nil
}

// inboxChannel 签发个人收件通道的订阅参数
// 通道本体由外部通知层维护，token 过期后客户端重新拉取 profile 续签
func (s *profileService) inboxChannel(customerId string, now time.Time) *respond.InboxChannelRespond {
	if s.notify == nil || s.notify.SubscribeKey == "" {
		return nil
	}
	ttlMinutes := s.notify.TokenTTLMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	ttl := time.Duration(ttlMinutes) * time.Minute

	token, err := jwt.GenerateIdentityToken(customerId, []string{"inbox"}, ttl)
	if err != nil {
		zap.L().Warn("generate inbox channel token failed", zap.Error(err))
		return nil
	}
	expire := now.Add(ttl)
	return &respond.InboxChannelRespond{
		Channel:          s.notify.InboxChannelPrefix + customerId,
		SubscribeKey:     s.notify.SubscribeKey,
		Token:            token,
		ExpireTime:       expire.Format(time.RFC3339),
		RemainingSeconds: int(ttl / time.Second),
	}
}

// UpdateProfile 更新建聊隐私设置
func (s *profileService) UpdateProfile(ctx context.Context, callerId string, req request.UpdateProfileRequest) error {
	pc, err := s.ensureContext(ctx, callerId)
	if err != nil {
		return err
	}
	if pc.AcceptChatMessages == req.AcceptChatMessages {
		return nil
	}
	pc.AcceptChatMessages = req.AcceptChatMessages
	return s.repos.ProfileContext.Save(ctx, pc)
}

// ReadAllMessages 按状态集合全部已读
// 集合含 MARKETING 时同时推进营销已读位置
func (s *profileService) ReadAllMessages(ctx context.Context, callerId string, statuses []string) error {
	hasMarketing := false
	for _, status := range statuses {
		if status == chat_status_enum.MARKETING {
			hasMarketing = true
		}
	}

	now := s.clock.Now().UTC()
	return s.repos.Transaction(func(tx *mysql.Repositories) error {
		contexts, err := tx.ChatContext.FindByCustomerAndStatuses(ctx, callerId, statuses)
		if err != nil {
			return err
		}
		for i := range contexts {
			cc := &contexts[i]
			if cc.UnreadCount == 0 && !cc.ReadMessageId.Valid {
				continue
			}
			chat, err := tx.Chat.FindByUuid(ctx, cc.ChatId)
			if err != nil {
				return err
			}
			if err := s.readAllChat(ctx, tx, chat, cc); err != nil {
				return err
			}
		}

		if hasMarketing {
			pc, err := tx.ProfileContext.FindByCustomer(ctx, callerId)
			if err != nil {
				if errorx.IsNotFound(err) {
					return nil
				}
				return err
			}
			pc.MarketingReadTime = sql.NullTime{Time: now, Valid: true}
			return tx.ProfileContext.Save(ctx, pc)
		}
		return nil
	})
}

// readAllChat 单聊全部已读：未读消息置 READ，已读位置推到最新消息
func (s *profileService) readAllChat(ctx context.Context, tx *mysql.Repositories, chat *model.Chat, cc *model.ChatContext) error {
	var after time.Time
	var afterId int64
	if cc.ReadMessageId.Valid {
		if pos, err := tx.Message.FindByUuid(ctx, chat.Uuid, cc.ReadMessageId.Int64); err == nil {
			after, afterId = pos.SendTime, pos.Uuid
		}
	}
	unreadMessages, err := tx.Message.FindUnread(ctx, chat.Uuid, chat.Counterpart(cc.CustomerId), after, afterId)
	if err != nil {
		return err
	}
	for i := range unreadMessages {
		if !message_status_enum.CanRead(unreadMessages[i].Status) {
			continue
		}
		unreadMessages[i].Status = message_status_enum.READ
		if err := tx.Message.Save(ctx, &unreadMessages[i]); err != nil {
			return err
		}
	}

	readId := int64(0)
	if chat.LastMessageId.Valid {
		readId = chat.LastMessageId.Int64
	}
	return tx.ChatContext.UpdateUnread(ctx, chat.Uuid, cc.CustomerId, 0, readId)
}

// ReadAllTrades 交易未读数全部清零
func (s *profileService) ReadAllTrades(ctx context.Context, callerId string) error {
	return s.repos.TradeContext.ResetUnreadByCustomer(ctx, callerId)
}

// ListTrades 列出客户参与的交易
// 交易数据来自交易引擎，叠加本地维护的显示名与未读数
func (s *profileService) ListTrades(ctx context.Context, callerId string) (*respond.TradeListRespond, error) {
	trades, err := s.trades.ListTrades(ctx, callerId)
	if err != nil {
		return nil, err
	}

	rsp := &respond.TradeListRespond{Trades: make([]respond.TradeRespond, 0, len(trades))}
	for _, trade := range trades {
		item := respond.TradeRespond{
			TradeHash:             trade.TradeHash,
			CryptoCurrency:        trade.CryptoCurrency,
			FiatCurrency:          trade.FiatCurrency,
			CryptoAmountRequested: trade.CryptoAmountRequested,
			FiatAmountRequested:   trade.FiatAmountRequested,
			Status:                trade.Status,
			PartnerId:             trade.PartnerId,
			CreateTime:            trade.CreateTime.UTC().Format(time.RFC3339),
		}
		tc, err := s.repos.TradeContext.FindByTradeAndCustomer(ctx, trade.TradeHash, callerId)
		if err == nil {
			item.TradeName = tc.TradeName
			item.UnreadCount = tc.UnreadCount
		} else if !errorx.IsNotFound(err) {
			return nil, err
		}
		if item.TradeName == "" {
			item.TradeName = "Trade " + trade.TradeHash
		}
		rsp.Trades = append(rsp.Trades, item)
	}
	return rsp, nil
}
