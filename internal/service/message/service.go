// Package message 实现消息业务逻辑
// 包含发送、投递状态机、列表分页以及报价的撤销与接受
package message

import (
	"context"
	"database/sql"
	"encoding/base64"
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
	"trade_chat_server/internal/service/params"
	"trade_chat_server/internal/service/unread"
	"trade_chat_server/pkg/constants"
	"trade_chat_server/pkg/enum/chat/chat_status_enum"
	"trade_chat_server/pkg/enum/message/message_status_enum"
	"trade_chat_server/pkg/enum/message/message_type_enum"
	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/pagination"
	"trade_chat_server/pkg/util/keymutex"
	"trade_chat_server/pkg/util/random"
	"trade_chat_server/pkg/util/snowflake"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos       *mysql.Repositories
	cache       myredis.AsyncCacheService
	clock       clockwork.Clock
	locks       *keymutex.KeyMutex
	pub         eventbus.Publisher
	attachments external.Attachments
	trades      external.TradeEngine
	profiles    external.ProfileDirectory
}

// NewMessageService 构造函数
func NewMessageService(
	repos *mysql.Repositories,
	cache myredis.AsyncCacheService,
	clock clockwork.Clock,
	locks *keymutex.KeyMutex,
	pub eventbus.Publisher,
	attachments external.Attachments,
	trades external.TradeEngine,
	profiles external.ProfileDirectory,
) *messageService {
	return &messageService{
		repos:       repos,
		cache:       cache,
		clock:       clock,
		locks:       locks,
		pub:         pub,
		attachments: attachments,
		trades:      trades,
		profiles:    profiles,
	}
}

// ToRespond 组装消息响应
// 雪花 ID 序列化为字符串，避免前端 JS 精度丢失
func ToRespond(msg *model.Message) *respond.MessageRespond {
	rsp := &respond.MessageRespond{
		MessageId:  strconv.FormatInt(msg.Uuid, 10),
		ChatId:     msg.ChatId,
		AuthorId:   msg.AuthorId,
		Type:       msg.Type,
		Text:       msg.Text,
		Status:     msg.Status,
		CreateTime: msg.SendTime.UTC().Format(time.RFC3339),
	}
	if msg.Parameters != "" {
		rsp.Parameters = json.RawMessage(msg.Parameters)
	}
	if msg.Attachments != "" {
		_ = json.Unmarshal([]byte(msg.Attachments), &rsp.Attachments)
	}
	if msg.ContentUpdatedAt.Valid {
		rsp.UpdateTime = msg.ContentUpdatedAt.Time.UTC().Format(time.RFC3339)
	}
	if msg.PrevMessageId.Valid {
		rsp.PrevMessageId = strconv.FormatInt(msg.PrevMessageId.Int64, 10)
	}
	if msg.ExternalRequestId.Valid {
		rsp.ExternalRequestId = msg.ExternalRequestId.String
	}
	return rsp
}

// loadChatFor 加载聊天并校验参与者
// 非参与者一律 NotFound，不暴露聊天是否存在
func (s *messageService) loadChatFor(ctx context.Context, repos *mysql.Repositories, callerId, chatId string) (*model.Chat, error) {
	chat, err := repos.Chat.FindByUuid(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(callerId) {
		return nil, errorx.Newf(errorx.CodeNotFound, "聊天不存在: %s", chatId)
	}
	return chat, nil
}

// nextSendTime 保证同一聊天内消息创建时间严格递增
func nextSendTime(last *model.Message, now time.Time) time.Time {
	if last != nil && !now.After(last.SendTime) {
		return last.SendTime.Add(time.Millisecond)
	}
	return now
}

// appendInput 追加消息的内部输入
type appendInput struct {
	authorId          string
	messageType       string
	text              string
	parametersJSON    string
	attachmentsJSON   string
	externalRequestId string
	offerHash         string
	tradeHash         string
}

// appendMessageTx 在事务内追加一条消息并维护所有派生状态
// 同一事务完成：消息插入、last_message 指针、双方 activity_time、
// 接收方未读数重算、交易未读数自增
func (s *messageService) appendMessageTx(ctx context.Context, tx *mysql.Repositories, chat *model.Chat, in appendInput) (*model.Message, error) {
	now := s.clock.Now().UTC()
	last, err := tx.Message.FindLast(ctx, chat.Uuid)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	sendTime := nextSendTime(last, now)

	msg := &model.Message{
		Uuid:      snowflake.GenerateID(),
		ChatId:    chat.Uuid,
		AuthorId:  in.authorId,
		Type:      in.messageType,
		Text:      in.text,
		Status:    message_status_enum.SENT,
		SendTime:  sendTime,
		AuthorKey: chat.Uuid + ":" + in.authorId,
		OfferHash: in.offerHash,
		TradeHash: in.tradeHash,
	}
	msg.Parameters = in.parametersJSON
	msg.Attachments = in.attachmentsJSON
	if last != nil {
		msg.PrevMessageId = sql.NullInt64{Int64: last.Uuid, Valid: true}
	}
	if in.externalRequestId != "" {
		msg.ExternalRequestId = sql.NullString{String: in.externalRequestId, Valid: true}
	}

	if err := tx.Message.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := tx.Chat.UpdateLastMessage(ctx, chat.Uuid, msg.Uuid); err != nil {
		return nil, err
	}
	if err := tx.ChatContext.TouchActivity(ctx, chat.Uuid, sendTime); err != nil {
		return nil, err
	}

	// 只重算接收方：作者的未读数不受自己发言影响
	recipientCtx, err := tx.ChatContext.FindByChatAndCustomer(ctx, chat.Uuid, chat.Counterpart(in.authorId))
	if err != nil {
		return nil, err
	}
	if err := unread.Recompute(ctx, tx, chat, recipientCtx); err != nil {
		return nil, err
	}

	// 交易消息同时推高接收方的交易未读数
	if in.tradeHash != "" {
		if err := tx.TradeContext.IncrementUnread(ctx, in.tradeHash, recipientCtx.CustomerId); err != nil && !errorx.IsNotFound(err) {
			return nil, err
		}
	}
	return msg, nil
}

// SendMessage 发消息
// 幂等依赖 (author_key, external_request_id) 唯一索引：重复请求转为
// 重放查询返回首次结果，绝不插入第二行
func (s *messageService) SendMessage(ctx context.Context, callerId, chatId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	resolved, err := params.Resolve(req.Type, req.Parameters)
	if err != nil {
		return nil, err
	}
	if req.Type == message_type_enum.MESSAGE && req.Text == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "文本消息必须携带 text")
	}

	in := appendInput{
		authorId:          callerId,
		messageType:       req.Type,
		text:              req.Text,
		externalRequestId: req.ExternalRequestId,
	}
	if len(req.Parameters) > 0 {
		in.parametersJSON = string(req.Parameters)
	}
	// 报价与交易消息冗余 hash 列，支撑按 hash 的撤销/接受查询
	if resolved.Offer != nil {
		if resolved.Offer.OfferHash == "" {
			resolved.Offer.OfferHash = random.GetRandomHash(constants.OFFER_HASH_LEN)
		}
		data, mErr := json.Marshal(resolved.Offer)
		if mErr != nil {
			return nil, errorx.Wrap(mErr, errorx.CodeSchemaMismatch, "序列化报价参数失败")
		}
		in.parametersJSON = string(data)
		in.offerHash = resolved.Offer.OfferHash
	}
	if resolved.Trade != nil {
		in.tradeHash = resolved.Trade.TradeHash
	}

	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	var msg *model.Message
	backoff := retry.WithMaxRetries(constants.CONFLICT_MAX_RETRIES, retry.NewConstant(20*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var txErr error
		msg, txErr = s.sendOnce(ctx, callerId, chatId, in)
		if errorx.GetCode(txErr) == errorx.CodeConflict {
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}

	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageCreated,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: msg.SendTime,
	})
	s.invalidateChat(chatId)
	return ToRespond(msg), nil
}

func (s *messageService) sendOnce(ctx context.Context, callerId, chatId string, in appendInput) (*model.Message, error) {
	var msg *model.Message
	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		chat, err := s.loadChatFor(ctx, tx, callerId, chatId)
		if err != nil {
			return err
		}
		if err := s.checkSendAllowed(ctx, tx, chat, callerId); err != nil {
			return err
		}
		msg, err = s.appendMessageTx(ctx, tx, chat, in)
		return err
	})
	if err != nil {
		// 幂等键撞唯一索引：重放首次写入的消息
		if errorx.GetCode(err) == errorx.CodeAlreadyExists && in.externalRequestId != "" {
			return s.repos.Message.FindByExternalRequestId(ctx, chatId, in.authorId, in.externalRequestId)
		}
		return nil, err
	}
	return msg, nil
}

// checkSendAllowed 发送前的拉黑检查
// 接收方拉黑了聊天返回 RecipientBlocked；作者自己拉黑的聊天需先解除
func (s *messageService) checkSendAllowed(ctx context.Context, tx *mysql.Repositories, chat *model.Chat, authorId string) error {
	if authorId == constants.SYSTEM_SENDER_ID {
		return nil
	}
	recipientCtx, err := tx.ChatContext.FindByChatAndCustomer(ctx, chat.Uuid, chat.Counterpart(authorId))
	if err != nil {
		return err
	}
	if recipientCtx.Status == chat_status_enum.BLOCKED {
		return errorx.New(errorx.CodeRecipientBlocked, "对方已拉黑此聊天")
	}
	authorCtx, err := tx.ChatContext.FindByChatAndCustomer(ctx, chat.Uuid, authorId)
	if err != nil {
		return err
	}
	if authorCtx.Status == chat_status_enum.BLOCKED {
		return errorx.New(errorx.CodeInvalidState, "请先解除对此聊天的拉黑")
	}
	return nil
}

// GetMessage 获取单条消息，带 read-through 缓存
func (s *messageService) GetMessage(ctx context.Context, callerId, chatId string, messageId int64) (*respond.MessageRespond, error) {
	if _, err := s.loadChatFor(ctx, s.repos, callerId, chatId); err != nil {
		return nil, err
	}

	cacheKey := "message_" + chatId + "_" + strconv.FormatInt(messageId, 10)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var rsp respond.MessageRespond
			if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
				return &rsp, nil
			}
		}
	}

	msg, err := s.repos.Message.FindByUuid(ctx, chatId, messageId)
	if err != nil {
		return nil, err
	}
	rsp := ToRespond(msg)

	if s.cache != nil {
		if data, err := json.Marshal(rsp); err == nil {
			s.cache.SubmitTask(func() {
				if err := s.cache.Set(context.Background(), cacheKey, string(data), time.Minute*constants.REDIS_TIMEOUT); err != nil {
					zap.L().Warn("cache message failed", zap.Error(err))
				}
			})
		}
	}
	return rsp, nil
}

// ListMessages 游标分页列出消息
// 不带 page_token 时可用 last_message_id 播种，从已读位置做增量同步
func (s *messageService) ListMessages(ctx context.Context, callerId, chatId string, req request.ListMessagesRequest) (*respond.MessageListRespond, error) {
	if _, err := s.loadChatFor(ctx, s.repos, callerId, chatId); err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(req.Limit)

	var cur *pagination.Cursor
	switch {
	case req.PageToken != "":
		decoded, err := pagination.Decode(req.PageToken)
		if err != nil {
			return nil, err
		}
		cur = &decoded
	case req.LastMessageId > 0:
		seed, err := s.repos.Message.FindByUuid(ctx, chatId, req.LastMessageId)
		if err != nil {
			return nil, err
		}
		cur = &pagination.Cursor{
			SortTime: seed.SendTime.UnixNano(),
			ID:       strconv.FormatInt(seed.Uuid, 10),
			Desc:     req.OrderDesc,
		}
	}

	messages, err := s.repos.Message.ListPage(ctx, chatId, cur, limit, req.OrderDesc)
	if err != nil {
		return nil, err
	}

	rsp := &respond.MessageListRespond{Messages: make([]respond.MessageRespond, 0, len(messages))}
	for i := range messages {
		rsp.Messages = append(rsp.Messages, *ToRespond(&messages[i]))
	}

	if len(messages) == limit {
		last := messages[len(messages)-1]
		rsp.NextPageToken = pagination.Encode(pagination.Cursor{
			SortTime: last.SendTime.UnixNano(),
			ID:       strconv.FormatInt(last.Uuid, 10),
			Desc:     req.OrderDesc,
		})
	}
	if cur != nil && len(messages) > 0 {
		first := messages[0]
		rsp.PrevPageToken = pagination.Encode(pagination.Cursor{
			SortTime: first.SendTime.UnixNano(),
			ID:       strconv.FormatInt(first.Uuid, 10),
			Desc:     req.OrderDesc,
			Prev:     true,
		})
	}
	return rsp, nil
}

// markOne 单条状态迁移，返回逐条结果
func markOne(msg *model.Message, callerId string, toRead bool) respond.MarkItemRespond {
	item := respond.MarkItemRespond{MessageId: strconv.FormatInt(msg.Uuid, 10)}
	if msg.AuthorId == callerId {
		item.Code = errorx.CodeForbidden
		item.Msg = "只能标记对方发出的消息"
		return item
	}

	if toRead {
		if msg.Status == message_status_enum.READ {
			item.Ok = true // 幂等空操作
			return item
		}
		if !message_status_enum.CanRead(msg.Status) {
			item.Code = errorx.CodeInvalidState
			item.Msg = "当前状态不允许已读: " + msg.Status
			return item
		}
		msg.Status = message_status_enum.READ
		item.Ok = true
		return item
	}

	if message_status_enum.DeliverNoop(msg.Status) {
		item.Ok = true
		return item
	}
	if !message_status_enum.CanDeliver(msg.Status) {
		item.Code = errorx.CodeInvalidState
		item.Msg = "当前状态不允许投递: " + msg.Status
		return item
	}
	msg.Status = message_status_enum.DELIVERED
	item.Ok = true
	return item
}

// MarkDelivered 批量置为已投递
// 整批在一个事务内，单条失败不拖垮其他条目
func (s *messageService) MarkDelivered(ctx context.Context, callerId, chatId string, messageIds []int64) (*respond.MarkMessagesRespond, error) {
	return s.markBatch(ctx, callerId, chatId, messageIds, false)
}

// MarkRead 批量置为已读，并推进调用者的已读位置
func (s *messageService) MarkRead(ctx context.Context, callerId, chatId string, messageIds []int64) (*respond.MarkMessagesRespond, error) {
	return s.markBatch(ctx, callerId, chatId, messageIds, true)
}

func (s *messageService) markBatch(ctx context.Context, callerId, chatId string, messageIds []int64, toRead bool) (*respond.MarkMessagesRespond, error) {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	rsp := &respond.MarkMessagesRespond{Results: make([]respond.MarkItemRespond, 0, len(messageIds))}
	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		chat, err := s.loadChatFor(ctx, tx, callerId, chatId)
		if err != nil {
			return err
		}
		cc, err := tx.ChatContext.FindByChatAndCustomer(ctx, chatId, callerId)
		if err != nil {
			return err
		}

		// 已读位置只向前推进
		var maxRead *model.Message
		for _, id := range messageIds {
			msg, err := tx.Message.FindByUuid(ctx, chatId, id)
			if err != nil {
				if errorx.IsNotFound(err) {
					rsp.Results = append(rsp.Results, respond.MarkItemRespond{
						MessageId: strconv.FormatInt(id, 10),
						Code:      errorx.CodeNotFound,
						Msg:       "消息不存在",
					})
					continue
				}
				return err
			}
			item := markOne(msg, callerId, toRead)
			rsp.Results = append(rsp.Results, item)
			if !item.Ok {
				continue
			}
			if err := tx.Message.Save(ctx, msg); err != nil {
				return err
			}
			if toRead && (maxRead == nil || afterPosition(msg, maxRead)) {
				maxRead = msg
			}
		}

		if maxRead != nil && s.advancesReadPosition(ctx, tx, cc, maxRead) {
			cc.ReadMessageId = sql.NullInt64{Int64: maxRead.Uuid, Valid: true}
			after, afterId := maxRead.SendTime, maxRead.Uuid
			count, err := tx.Message.CountUnread(ctx, chatId, chat.Counterpart(callerId), after, afterId)
			if err != nil {
				return err
			}
			if err := tx.ChatContext.UpdateUnread(ctx, chatId, callerId, int(count), maxRead.Uuid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageStatus,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	s.invalidateChat(chatId)
	return rsp, nil
}

// afterPosition 判断 a 的排序键是否在 b 之后
func afterPosition(a, b *model.Message) bool {
	if !a.SendTime.Equal(b.SendTime) {
		return a.SendTime.After(b.SendTime)
	}
	return a.Uuid > b.Uuid
}

// advancesReadPosition 判断候选消息是否推进已读位置
func (s *messageService) advancesReadPosition(ctx context.Context, tx *mysql.Repositories, cc *model.ChatContext, candidate *model.Message) bool {
	if !cc.ReadMessageId.Valid {
		return true
	}
	current, err := tx.Message.FindByUuid(ctx, cc.ChatId, cc.ReadMessageId.Int64)
	if err != nil {
		return true
	}
	return afterPosition(candidate, current)
}

// ReadAll 全部已读：未读消息置 READ，已读位置推到最新消息，未读数归零
func (s *messageService) ReadAll(ctx context.Context, callerId, chatId string) error {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		chat, err := s.loadChatFor(ctx, tx, callerId, chatId)
		if err != nil {
			return err
		}
		cc, err := tx.ChatContext.FindByChatAndCustomer(ctx, chatId, callerId)
		if err != nil {
			return err
		}

		var after time.Time
		var afterId int64
		if cc.ReadMessageId.Valid {
			if pos, err := tx.Message.FindByUuid(ctx, chatId, cc.ReadMessageId.Int64); err == nil {
				after, afterId = pos.SendTime, pos.Uuid
			}
		}
		unreadMessages, err := tx.Message.FindUnread(ctx, chatId, chat.Counterpart(callerId), after, afterId)
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
		return tx.ChatContext.UpdateUnread(ctx, chatId, callerId, 0, readId)
	})
	if err != nil {
		return err
	}

	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageStatus,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	s.invalidateChat(chatId)
	return nil
}

// UpdateMessage 作者编辑消息文本
// DELIVERED/READ 编辑后迁移为 UPDATED；SENT 编辑只盖更新时间戳
// 编辑已读消息不恢复接收方未读数
func (s *messageService) UpdateMessage(ctx context.Context, callerId, chatId string, messageId int64, req request.UpdateMessageRequest) (*respond.MessageRespond, error) {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	var msg *model.Message
	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		if _, err := s.loadChatFor(ctx, tx, callerId, chatId); err != nil {
			return err
		}
		var err error
		msg, err = tx.Message.FindByUuid(ctx, chatId, messageId)
		if err != nil {
			return err
		}
		if msg.AuthorId != callerId {
			return errorx.New(errorx.CodeForbidden, "只有作者可以编辑消息")
		}
		if msg.Type != message_type_enum.MESSAGE {
			return errorx.Newf(errorx.CodeInvalidState, "消息类型 %s 不支持编辑", msg.Type)
		}
		if msg.Status == message_status_enum.HIDDEN || msg.Status == message_status_enum.NEW {
			return errorx.Newf(errorx.CodeInvalidState, "当前状态不允许编辑: %s", msg.Status)
		}

		msg.Text = req.Text
		msg.ContentUpdatedAt = sql.NullTime{Time: s.clock.Now().UTC(), Valid: true}
		if message_status_enum.CanUpdate(msg.Status) {
			msg.Status = message_status_enum.UPDATED
		}
		return tx.Message.Save(ctx, msg)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateMessage(chatId, messageId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageStatus,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	return ToRespond(msg), nil
}

// HideMessage 风控/作者软删除，任意状态可进入 HIDDEN
// 隐藏会从双方未读数中剔除该消息，同一事务内重算
func (s *messageService) HideMessage(ctx context.Context, callerId, chatId string, messageId int64, moderator bool) error {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		chat, err := s.loadChatFor(ctx, tx, callerId, chatId)
		if err != nil {
			return err
		}
		msg, err := tx.Message.FindByUuid(ctx, chatId, messageId)
		if err != nil {
			return err
		}
		if !moderator && msg.AuthorId != callerId {
			return errorx.New(errorx.CodeForbidden, "只有作者可以删除消息")
		}
		if msg.Status == message_status_enum.HIDDEN {
			return nil
		}
		msg.Status = message_status_enum.HIDDEN
		msg.ContentUpdatedAt = sql.NullTime{Time: s.clock.Now().UTC(), Valid: true}
		if err := tx.Message.Save(ctx, msg); err != nil {
			return err
		}
		return unread.RecomputeBoth(ctx, tx, chat)
	})
	if err != nil {
		return err
	}

	s.invalidateMessage(chatId, messageId)
	s.invalidateChat(chatId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageStatus,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	return nil
}

// LinkAttachment 上传附件并作为 FILE 消息发送
// 文件字节交给附件服务，消息只保存返回的描述符
func (s *messageService) LinkAttachment(ctx context.Context, callerId, chatId string, req request.LinkAttachmentRequest) (*respond.MessageRespond, error) {
	data, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "file 不是合法的 base64")
	}
	descriptor, err := s.attachments.Store(ctx, req.Filename, data)
	if err != nil {
		return nil, err
	}
	attachmentsJSON, err := json.Marshal([]*external.AttachmentDescriptor{descriptor})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "序列化附件描述符失败")
	}

	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	var msg *model.Message
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		chat, err := s.loadChatFor(ctx, tx, callerId, chatId)
		if err != nil {
			return err
		}
		if err := s.checkSendAllowed(ctx, tx, chat, callerId); err != nil {
			return err
		}
		msg, err = s.appendMessageTx(ctx, tx, chat, appendInput{
			authorId:        callerId,
			messageType:     message_type_enum.FILE,
			attachmentsJSON: string(attachmentsJSON),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateChat(chatId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageCreated,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: msg.SendTime,
	})
	return ToRespond(msg), nil
}

// loadOffer 按报价 hash 加载报价消息并解析参数
func loadOffer(ctx context.Context, tx *mysql.Repositories, chatId, offerHash string) (*model.Message, *params.SpecialOfferParameters, error) {
	msg, err := tx.Message.FindOfferByHash(ctx, chatId, offerHash)
	if err != nil {
		return nil, nil, err
	}
	var offer params.SpecialOfferParameters
	if err := json.Unmarshal([]byte(msg.Parameters), &offer); err != nil {
		return nil, nil, errorx.Wrap(err, errorx.CodeSchemaMismatch, "报价参数损坏")
	}
	return msg, &offer, nil
}

// saveOffer 回写报价参数并盖更新时间戳
func (s *messageService) saveOffer(ctx context.Context, tx *mysql.Repositories, msg *model.Message, offer *params.SpecialOfferParameters) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "序列化报价参数失败")
	}
	msg.Parameters = string(data)
	msg.ContentUpdatedAt = sql.NullTime{Time: s.clock.Now().UTC(), Valid: true}
	if message_status_enum.CanUpdate(msg.Status) {
		msg.Status = message_status_enum.UPDATED
	}
	return tx.Message.Save(ctx, msg)
}

// CancelOffer 报价主人撤销报价
func (s *messageService) CancelOffer(ctx context.Context, callerId, chatId, offerHash string) (*respond.MessageRespond, error) {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	var msg *model.Message
	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		if _, err := s.loadChatFor(ctx, tx, callerId, chatId); err != nil {
			return err
		}
		var offer *params.SpecialOfferParameters
		var err error
		msg, offer, err = loadOffer(ctx, tx, chatId, offerHash)
		if err != nil {
			return err
		}
		if offer.OfferOwnerId != callerId {
			return errorx.New(errorx.CodeForbidden, "只有报价主人可以撤销报价")
		}
		if offer.OfferAccepted {
			return errorx.New(errorx.CodeInvalidState, "报价已被接受，无法撤销")
		}
		if !offer.Active {
			return nil // 重复撤销为幂等空操作
		}
		offer.Active = false
		return s.saveOffer(ctx, tx, msg, offer)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateMessage(chatId, msg.Uuid)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageStatus,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: s.clock.Now().UTC(),
	})
	return ToRespond(msg), nil
}

// AcceptOffer 非报价主人接受报价
// 交易引擎开启交易，同一事务内标记报价已接受并追加 SPECIAL_TRADE 消息
func (s *messageService) AcceptOffer(ctx context.Context, callerId, chatId, offerHash string) (*respond.MessageRespond, error) {
	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	// 先做只读校验，避免带着锁调用交易引擎前就注定失败
	chat, err := s.loadChatFor(ctx, s.repos, callerId, chatId)
	if err != nil {
		return nil, err
	}
	offerMsg, offer, err := loadOffer(ctx, s.repos, chatId, offerHash)
	if err != nil {
		return nil, err
	}
	if offer.OfferOwnerId == callerId {
		return nil, errorx.New(errorx.CodeForbidden, "报价主人不能接受自己的报价")
	}
	if offer.OfferAccepted {
		return nil, errorx.New(errorx.CodeInvalidState, "报价已被接受")
	}
	if !offer.Active {
		return nil, errorx.New(errorx.CodeInvalidState, "报价已撤销")
	}

	trade, err := s.trades.OpenTrade(ctx, external.OpenTradeRequest{
		OfferHash:      offer.OfferHash,
		OfferOwnerId:   offer.OfferOwnerId,
		TakerId:        callerId,
		CryptoCurrency: offer.CryptoCurrency,
		FiatCurrency:   offer.FiatCurrency,
		CryptoAmount:   offer.CryptoAmount,
		FiatAmount:     offer.FiatAmount,
	})
	if err != nil {
		return nil, err
	}

	tradeParams := params.SpecialTradeParameters{
		OfferType:               offer.OfferType,
		CryptoCurrency:          offer.CryptoCurrency,
		FiatCurrency:            offer.FiatCurrency,
		FiatPricePerCrypto:      offer.FiatPricePerCrypto,
		CryptoAmountRequested:   offer.CryptoAmount,
		CryptoAmountTotal:       offer.CryptoAmountTotal,
		FeePercentage:           offer.FeePercentage,
		FeeCryptoAmount:         offer.FeeCryptoAmount,
		FiatAmountRequested:     offer.FiatAmount,
		PaymentMethodName:       offer.PaymentMethodName,
		PaymentMethodSlug:       offer.PaymentMethodSlug,
		Margin:                  offer.Margin,
		CryptoToFiatAmount:      offer.CryptoToFiatAmount,
		FeeCryptoToFiatAmount:   offer.FeeCryptoToFiatAmount,
		CryptoToFiatAmountTotal: offer.CryptoToFiatAmountTotal,
		TradeStatus:             trade.Status,
		OfferOwnerId:            offer.OfferOwnerId,
		TradeHash:               trade.TradeHash,
	}
	tradeParamsJSON, err := json.Marshal(&tradeParams)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "序列化交易参数失败")
	}

	var tradeMsg *model.Message
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		current, latest, err := loadOffer(ctx, tx, chatId, offerHash)
		if err != nil {
			return err
		}
		// 持锁期间状态不会变，这里的二次检查防御直接改库
		if latest.OfferAccepted || !latest.Active {
			return errorx.New(errorx.CodeConflict, "报价状态已变化")
		}
		latest.OfferAccepted = true
		latest.Active = false
		if err := s.saveOffer(ctx, tx, current, latest); err != nil {
			return err
		}

		if err := s.upsertTradeContexts(ctx, tx, chat, trade.TradeHash); err != nil {
			return err
		}

		tradeMsg, err = s.appendMessageTx(ctx, tx, chat, appendInput{
			authorId:       callerId,
			messageType:    message_type_enum.SPECIAL_TRADE,
			parametersJSON: string(tradeParamsJSON),
			offerHash:      offer.OfferHash,
			tradeHash:      trade.TradeHash,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateMessage(chatId, offerMsg.Uuid)
	s.invalidateChat(chatId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageCreated,
		Key:        chatId,
		CustomerId: callerId,
		OccurredAt: tradeMsg.SendTime,
	})
	return ToRespond(tradeMsg), nil
}

// upsertTradeContexts 为双方建立交易视图行，名称取对方显示名
func (s *messageService) upsertTradeContexts(ctx context.Context, tx *mysql.Repositories, chat *model.Chat, tradeHash string) error {
	customers, err := s.profiles.GetCustomers(ctx, []string{chat.OriginatorId, chat.PartnerId})
	if err != nil {
		zap.L().Warn("resolve customers for trade naming failed", zap.Error(err))
		customers = map[string]*external.Customer{}
	}
	nameFor := func(counterpart string) string {
		if c, ok := customers[counterpart]; ok && c.DisplayName != "" {
			return "Trade with " + c.DisplayName
		}
		return "Trade " + tradeHash
	}
	for _, customerId := range []string{chat.OriginatorId, chat.PartnerId} {
		tc := &model.TradeContext{
			TradeHash:  tradeHash,
			CustomerId: customerId,
			TradeName:  nameFor(chat.Counterpart(customerId)),
		}
		if err := tx.TradeContext.Upsert(ctx, tc); err != nil {
			return err
		}
	}
	return nil
}

// InjectSystemMessage 向客户的系统聊天注入系统消息
// 系统聊天按需创建，客户侧上下文状态为 SYSTEM
func (s *messageService) InjectSystemMessage(ctx context.Context, req request.SystemMessageRequest) (*respond.MessageRespond, error) {
	if _, err := params.Resolve(message_type_enum.SYSTEM, req.Parameters); err != nil {
		return nil, err
	}

	chatId, err := s.ensureSystemChat(ctx, req.CustomerId)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(chatId)
	defer s.locks.Unlock(chatId)

	in := appendInput{
		authorId:          constants.SYSTEM_SENDER_ID,
		messageType:       message_type_enum.SYSTEM,
		text:              req.Text,
		externalRequestId: req.ExternalRequestId,
	}
	if len(req.Parameters) > 0 {
		in.parametersJSON = string(req.Parameters)
	}

	var msg *model.Message
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		chat, err := tx.Chat.FindByUuid(ctx, chatId)
		if err != nil {
			return err
		}
		msg, err = s.appendMessageTx(ctx, tx, chat, in)
		return err
	})
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeAlreadyExists && req.ExternalRequestId != "" {
			replayed, rErr := s.repos.Message.FindByExternalRequestId(ctx, chatId, constants.SYSTEM_SENDER_ID, req.ExternalRequestId)
			if rErr != nil {
				return nil, rErr
			}
			return ToRespond(replayed), nil
		}
		return nil, err
	}

	s.invalidateChat(chatId)
	eventbus.FireAndForget(s.pub, ctx, eventbus.Event{
		Type:       eventbus.EventMessageCreated,
		Key:        chatId,
		CustomerId: req.CustomerId,
		OccurredAt: msg.SendTime,
	})
	return ToRespond(msg), nil
}

// ensureSystemChat 查找或创建客户的系统聊天
func (s *messageService) ensureSystemChat(ctx context.Context, customerId string) (string, error) {
	pairKey := model.BuildPairKey(constants.SYSTEM_SENDER_ID, customerId)
	existing, err := s.repos.Chat.FindByPairKey(ctx, pairKey)
	if err == nil {
		return existing.Uuid, nil
	}
	if !errorx.IsNotFound(err) {
		return "", err
	}

	now := s.clock.Now().UTC()
	chat := &model.Chat{
		Uuid:         uuid.NewString(),
		PairKey:      pairKey,
		OriginatorId: constants.SYSTEM_SENDER_ID,
		PartnerId:    customerId,
	}
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		if err := tx.Chat.Create(ctx, chat); err != nil {
			return err
		}
		for _, cid := range []string{constants.SYSTEM_SENDER_ID, customerId} {
			cc := &model.ChatContext{
				ChatId:       chat.Uuid,
				CustomerId:   cid,
				ChatName:     "System",
				Status:       chat_status_enum.SYSTEM,
				ActivityTime: now,
			}
			if err := tx.ChatContext.Create(ctx, cc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// 并发注入输掉唯一索引竞争
		if errorx.GetCode(err) == errorx.CodeAlreadyExists {
			winner, fErr := s.repos.Chat.FindByPairKey(ctx, pairKey)
			if fErr != nil {
				return "", fErr
			}
			return winner.Uuid, nil
		}
		return "", err
	}
	return chat.Uuid, nil
}

// invalidateChat 同步失效聊天视图缓存
func (s *messageService) invalidateChat(chatId string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(context.Background(), "chat_"+chatId+"_*"); err != nil {
		zap.L().Warn("invalidate chat cache failed", zap.Error(err))
	}
}

// invalidateMessage 同步失效单条消息缓存
func (s *messageService) invalidateMessage(chatId string, messageId int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.Background(), "message_"+chatId+"_"+strconv.FormatInt(messageId, 10)); err != nil {
		zap.L().Warn("invalidate message cache failed", zap.Error(err))
	}
}
