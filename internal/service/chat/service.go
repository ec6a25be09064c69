// Package chat 实现聊天业务逻辑
package chat

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"trade_chat_server/internal/dao/mysql"
	myredis "trade_chat_server/internal/dao/redis"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/dto/respond"
	"trade_chat_server/internal/infrastructure/eventbus"
	"trade_chat_server/internal/model"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/pkg/constants"
	"trade_chat_server/pkg/enum/chat/chat_start_result_enum"
	"trade_chat_server/pkg/enum/chat/chat_status_enum"
	"trade_chat_server/pkg/enum/contact/contact_type_enum"
	"trade_chat_server/pkg/enum/customer/customer_status_enum"
	"trade_chat_server/pkg/enum/profile/accept_messages_enum"
	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/pagination"
	"trade_chat_server/pkg/util/keymutex"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// messageSender 发消息的最小依赖
// 建聊可携带首条消息，发送逻辑完全委托给消息业务
type messageSender interface {
	SendMessage(ctx context.Context, callerId, chatId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
}

// chatService 聊天业务逻辑实现
type chatService struct {
	repos    *mysql.Repositories
	cache    myredis.AsyncCacheService
	clock    clockwork.Clock
	locks    *keymutex.KeyMutex
	pub      eventbus.Publisher
	profiles external.ProfileDirectory
	trades   external.TradeEngine
	messages messageSender
}

// NewChatService 构造函数
// messages 在聚合层注入，避免与消息业务互相持有
func NewChatService(
	repos *mysql.Repositories,
	cache myredis.AsyncCacheService,
	clock clockwork.Clock,
	locks *keymutex.KeyMutex,
	pub eventbus.Publisher,
	profiles external.ProfileDirectory,
	trades external.TradeEngine,
) *chatService {
	return &chatService{
		repos:    repos,
		cache:    cache,
		clock:    clock,
		locks:    locks,
		pub:      pub,
		profiles: profiles,
		trades:   trades,
	}
}

// SetMessageSender 注入消息发送依赖
func (s *chatService) SetMessageSender(messages messageSender) {
	s.messages = messages
}

// startDecision 建聊可行性裁决结果
type startDecision struct {
	result    string
	errorCode string
	existing  *model.Chat
}

// decideStart 建聊决策函数
// StartChat 与 CheckResponders 共用同一套裁决，保证两个口径永不漂移
func (s *chatService) decideStart(ctx context.Context, callerId, partnerId string) (*startDecision, error) {
	if callerId == partnerId {
		return &startDecision{result: chat_start_result_enum.COULD_NOT_START, errorCode: chat_start_result_enum.ErrPrivacySettings}, nil
	}

	// 1. 已有聊天直接短路
	existing, err := s.repos.Chat.FindByPairKey(ctx, model.BuildPairKey(callerId, partnerId))
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return &startDecision{result: chat_start_result_enum.ALREADY_STARTED, existing: existing}, nil
	}

	// 2. 对方账号被平台禁用
	partner, err := s.profiles.GetCustomer(ctx, partnerId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeNotFound, "客户不存在: %s", partnerId)
		}
		return nil, err
	}
	if partner.Status == customer_status_enum.BANNED {
		return &startDecision{result: chat_start_result_enum.COULD_NOT_START, errorCode: chat_start_result_enum.ErrUserBanned}, nil
	}

	// 3. 任一方向的联系人拉黑都阻断建聊
	blocked, err := s.anyContactBlocked(ctx, callerId, partnerId)
	if err != nil {
		return nil, err
	}
	if blocked {
		return &startDecision{result: chat_start_result_enum.COULD_NOT_START, errorCode: chat_start_result_enum.ErrChatBlocked}, nil
	}

	// 4. 对方的建聊隐私设置
	ok, err := s.privacyAllows(ctx, callerId, partnerId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &startDecision{result: chat_start_result_enum.COULD_NOT_START, errorCode: chat_start_result_enum.ErrPrivacySettings}, nil
	}

	return &startDecision{result: chat_start_result_enum.COULD_START}, nil
}

func (s *chatService) anyContactBlocked(ctx context.Context, a, b string) (bool, error) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		contact, err := s.repos.Contact.FindByOwnerAndContact(ctx, pair[0], pair[1])
		if err != nil {
			if errorx.IsNotFound(err) {
				continue
			}
			return false, err
		}
		if contact.Type == contact_type_enum.BLOCKED {
			return true, nil
		}
	}
	return false, nil
}

// privacyAllows 检查对方隐私设置是否允许 callerId 建聊
func (s *chatService) privacyAllows(ctx context.Context, callerId, partnerId string) (bool, error) {
	pc, err := s.repos.ProfileContext.FindByCustomer(ctx, partnerId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return true, nil // 从未设置过，默认放行
		}
		return false, err
	}

	switch pc.AcceptChatMessages {
	case accept_messages_enum.YES, "":
		return true, nil
	case accept_messages_enum.NO:
		return false, nil
	case accept_messages_enum.TRUSTED_ONLY:
		return s.isTrustedContact(ctx, partnerId, callerId)
	case accept_messages_enum.TRUSTED_AND_TRADE_PARTNERS:
		trusted, err := s.isTrustedContact(ctx, partnerId, callerId)
		if err != nil || trusted {
			return trusted, err
		}
		return s.hasTradeWith(ctx, callerId, partnerId)
	}
	return false, nil
}

func (s *chatService) isTrustedContact(ctx context.Context, ownerId, contactId string) (bool, error) {
	contact, err := s.repos.Contact.FindByOwnerAndContact(ctx, ownerId, contactId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return contact.Type == contact_type_enum.TRUSTED, nil
}

// hasTradeWith 检查双方是否有共同交易
func (s *chatService) hasTradeWith(ctx context.Context, callerId, partnerId string) (bool, error) {
	trades, err := s.trades.ListTrades(ctx, callerId)
	if err != nil {
		// 交易引擎故障时不放宽隐私限制
		zap.L().Warn("list trades for privacy check failed", zap.Error(err))
		return false, nil
	}
	for _, t := range trades {
		if t.PartnerId == partnerId {
			return true, nil
		}
	}
	return false, nil
}

// StartChat 建聊
// 幂等依赖 pair_key 唯一索引：并发双发起只会有一方插入成功，
// 失败方转为读取既有聊天返回
func (s *chatService) StartChat(ctx context.Context, callerId string, req request.StartChatRequest) (*respond.ChatRespond, error) {
	decision, err := s.decideStart(ctx, callerId, req.PartnerId)
	if err != nil {
		return nil, err
	}

	var chat *model.Chat
	switch decision.result {
	case chat_start_result_enum.ALREADY_STARTED:
		chat = decision.existing
	case chat_start_result_enum.COULD_NOT_START:
		switch decision.errorCode {
		case chat_start_result_enum.ErrUserBanned:
			return nil, errorx.New(errorx.CodeChatBlocked, "对方账号不可用")
		case chat_start_result_enum.ErrChatBlocked:
			return nil, errorx.New(errorx.CodeChatBlocked, "双方存在拉黑关系")
		default:
			return nil, errorx.New(errorx.CodeChatBlocked, "对方隐私设置不允许建聊")
		}
	default:
		chat, err = s.createChat(ctx, callerId, req)
		if err != nil {
			return nil, err
		}
	}

	// 可选首条消息
	if req.Message != nil && s.messages != nil {
		if _, err := s.messages.SendMessage(ctx, callerId, chat.Uuid, *req.Message); err != nil {
			return nil, err
		}
	}

	return s.GetChat(ctx, callerId, chat.Uuid)
}

func (s *chatService) createChat(ctx context.Context, callerId string, req request.StartChatRequest) (*model.Chat, error) {
	now := s.clock.Now().UTC()
	chat := &model.Chat{
		Uuid:         uuid.NewString(),
		PairKey:      model.BuildPairKey(callerId, req.PartnerId),
		OriginatorId: callerId,
		PartnerId:    req.PartnerId,
	}

	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		if err := tx.Chat.Create(ctx, chat); err != nil {
			return err
		}
		for _, cc := range s.buildContexts(ctx, chat, req.ChatName, now) {
			if err := tx.ChatContext.Create(ctx, &cc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// 并发建聊输掉唯一索引竞争，读取赢家写入的聊天
		if errorx.GetCode(err) == errorx.CodeAlreadyExists {
			return s.repos.Chat.FindByPairKey(ctx, chat.PairKey)
		}
		return nil, err
	}

	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventChatContext,
		Key:        chat.Uuid,
		OccurredAt: now,
	})
	return chat, nil
}

// buildContexts 为双方各建一行上下文
// 聊天名称默认取对方显示名，发起方可为己方视图指定名称
func (s *chatService) buildContexts(ctx context.Context, chat *model.Chat, callerChatName string, now time.Time) []model.ChatContext {
	names := map[string]string{
		chat.OriginatorId: callerChatName,
		chat.PartnerId:    "",
	}
	customers, err := s.profiles.GetCustomers(ctx, []string{chat.OriginatorId, chat.PartnerId})
	if err != nil {
		zap.L().Warn("resolve customers for chat naming failed", zap.Error(err))
		customers = map[string]*external.Customer{}
	}
	fill := func(owner, counterpart string) string {
		if names[owner] != "" {
			return names[owner]
		}
		if c, ok := customers[counterpart]; ok && c.DisplayName != "" {
			return c.DisplayName
		}
		return counterpart
	}

	return []model.ChatContext{
		{
			ChatId:       chat.Uuid,
			CustomerId:   chat.OriginatorId,
			ChatName:     truncateName(fill(chat.OriginatorId, chat.PartnerId)),
			Status:       chat_status_enum.ACTIVE,
			ActivityTime: now,
		},
		{
			ChatId:       chat.Uuid,
			CustomerId:   chat.PartnerId,
			ChatName:     truncateName(fill(chat.PartnerId, chat.OriginatorId)),
			Status:       chat_status_enum.ACTIVE,
			ActivityTime: now,
		},
	}
}

func truncateName(name string) string {
	if len(name) > constants.CHAT_NAME_MAX_LEN {
		return name[:constants.CHAT_NAME_MAX_LEN]
	}
	return name
}

// GetChat 获取聊天（调用者视角），带 read-through 缓存
func (s *chatService) GetChat(ctx context.Context, callerId, chatId string) (*respond.ChatRespond, error) {
	cacheKey := "chat_" + chatId + "_" + callerId
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var rsp respond.ChatRespond
			if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
				return &rsp, nil
			}
		}
	}

	chat, cc, err := s.loadFor(ctx, callerId, chatId)
	if err != nil {
		return nil, err
	}
	rsp, err := s.assemble(ctx, chat, cc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(rsp); err == nil {
			s.cache.SubmitTask(func() {
				if err := s.cache.Set(context.Background(), cacheKey, string(data), time.Minute*constants.REDIS_TIMEOUT); err != nil {
					zap.L().Warn("cache chat failed", zap.Error(err))
				}
			})
		}
	}
	return rsp, nil
}

// loadFor 加载聊天与调用者的上下文
// 非参与者返回 NotFound 而不是 Forbidden：不暴露聊天是否存在
func (s *chatService) loadFor(ctx context.Context, callerId, chatId string) (*model.Chat, *model.ChatContext, error) {
	chat, err := s.repos.Chat.FindByUuid(ctx, chatId)
	if err != nil {
		return nil, nil, err
	}
	if !chat.HasParticipant(callerId) {
		return nil, nil, errorx.Newf(errorx.CodeNotFound, "聊天不存在: %s", chatId)
	}
	cc, err := s.repos.ChatContext.FindByChatAndCustomer(ctx, chatId, callerId)
	if err != nil {
		return nil, nil, err
	}
	return chat, cc, nil
}

func (s *chatService) assemble(ctx context.Context, chat *model.Chat, cc *model.ChatContext) (*respond.ChatRespond, error) {
	rsp := &respond.ChatRespond{
		ChatId:       chat.Uuid,
		PartnerId:    chat.Counterpart(cc.CustomerId),
		ChatName:     cc.ChatName,
		Status:       cc.Status,
		UnreadCount:  cc.UnreadCount,
		ActivityTime: cc.ActivityTime.UTC().Format(time.RFC3339),
	}
	if chat.LastMessageId.Valid {
		msg, err := s.repos.Message.FindByUuid(ctx, chat.Uuid, chat.LastMessageId.Int64)
		if err == nil {
			rsp.LastMessage = &respond.MessageRespond{
				MessageId:  strconv.FormatInt(msg.Uuid, 10),
				ChatId:     msg.ChatId,
				AuthorId:   msg.AuthorId,
				Type:       msg.Type,
				Text:       msg.Text,
				Status:     msg.Status,
				CreateTime: msg.SendTime.UTC().Format(time.RFC3339),
			}
		} else if !errorx.IsNotFound(err) {
			return nil, err
		}
	}
	return rsp, nil
}

// ListChats 游标分页列出聊天
func (s *chatService) ListChats(ctx context.Context, callerId string, req request.ListChatsRequest) (*respond.ChatListRespond, error) {
	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = chat_status_enum.DefaultListSet()
	}
	limit := pagination.NormalizeLimit(req.Limit)

	var cur *pagination.Cursor
	if req.PageToken != "" {
		decoded, err := pagination.Decode(req.PageToken)
		if err != nil {
			return nil, err
		}
		cur = &decoded
	}

	contexts, err := s.repos.ChatContext.ListByCustomer(ctx, callerId, statuses, req.Q, cur, limit)
	if err != nil {
		return nil, err
	}

	rsp := &respond.ChatListRespond{Chats: make([]respond.ChatRespond, 0, len(contexts))}
	for i := range contexts {
		chat, err := s.repos.Chat.FindByUuid(ctx, contexts[i].ChatId)
		if err != nil {
			if errorx.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		item, err := s.assemble(ctx, chat, &contexts[i])
		if err != nil {
			return nil, err
		}
		rsp.Chats = append(rsp.Chats, *item)
	}

	// 下一页 token：整页才可能有下一页
	if len(contexts) == limit {
		last := contexts[len(contexts)-1]
		rsp.NextPageToken = pagination.Encode(pagination.Cursor{
			SortTime: last.ActivityTime.UnixNano(),
			ID:       last.ChatId,
			Desc:     true,
		})
	}
	// 上一页 token：持有游标翻进来的页才有上一页
	if cur != nil && len(contexts) > 0 {
		first := contexts[0]
		rsp.PrevPageToken = pagination.Encode(pagination.Cursor{
			SortTime: first.ActivityTime.UnixNano(),
			ID:       first.ChatId,
			Desc:     true,
			Prev:     true,
		})
	}
	return rsp, nil
}

// BlockChat 拉黑聊天并返回更新后的聊天视图，重复拉黑为幂等空操作
func (s *chatService) BlockChat(ctx context.Context, callerId, chatId string) (*respond.ChatRespond, error) {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	chat, cc, err := s.loadFor(ctx, callerId, chatId)
	if err != nil {
		return nil, err
	}
	if cc.Status == chat_status_enum.BLOCKED {
		return s.assemble(ctx, chat, cc)
	}
	if err := s.repos.ChatContext.UpdateStatus(ctx, chatId, callerId, chat_status_enum.BLOCKED); err != nil {
		return nil, err
	}
	cc.Status = chat_status_enum.BLOCKED
	s.invalidate(chatId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventChatContext,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	return s.assemble(ctx, chat, cc)
}

// UnblockChat 解除拉黑并返回更新后的聊天视图
func (s *chatService) UnblockChat(ctx context.Context, callerId, chatId string) (*respond.ChatRespond, error) {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	chat, cc, err := s.loadFor(ctx, callerId, chatId)
	if err != nil {
		return nil, err
	}
	if cc.Status != chat_status_enum.BLOCKED {
		return nil, errorx.Newf(errorx.CodeInvalidState, "聊天未处于拉黑状态: %s", cc.Status)
	}
	if err := s.repos.ChatContext.UpdateStatus(ctx, chatId, callerId, chat_status_enum.ACTIVE); err != nil {
		return nil, err
	}
	cc.Status = chat_status_enum.ACTIVE
	s.invalidate(chatId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventChatContext,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	return s.assemble(ctx, chat, cc)
}

// CheckResponders 批量检查建聊可行性，纯读不落任何状态
func (s *chatService) CheckResponders(ctx context.Context, callerId string, responderIds []string) ([]respond.CheckResponderRespond, error) {
	results := make([]respond.CheckResponderRespond, 0, len(responderIds))
	for _, responderId := range responderIds {
		decision, err := s.decideStart(ctx, callerId, responderId)
		if err != nil {
			if errorx.IsNotFound(err) {
				results = append(results, respond.CheckResponderRespond{
					CustomerId: responderId,
					Result:     chat_start_result_enum.COULD_NOT_START,
					ErrorCode:  chat_start_result_enum.ErrCouldNotStart,
				})
				continue
			}
			return nil, err
		}
		results = append(results, respond.CheckResponderRespond{
			CustomerId: responderId,
			Result:     decision.result,
			ErrorCode:  decision.errorCode,
		})
	}
	return results, nil
}

// invalidate 同步失效聊天双方的视图缓存
func (s *chatService) invalidate(chatId string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(context.Background(), "chat_"+chatId+"_*"); err != nil {
		zap.L().Warn("invalidate chat cache failed", zap.Error(err))
	}
}
