package message

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"trade_chat_server/internal/config"
	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/infrastructure/eventbus"
	"trade_chat_server/internal/model"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/pkg/enum/chat/chat_status_enum"
	"trade_chat_server/pkg/enum/message/message_status_enum"
	"trade_chat_server/pkg/enum/message/message_type_enum"
	"trade_chat_server/pkg/enum/trade/trade_status_enum"
	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/util/keymutex"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	alice = "aaaaaaaa-0000-0000-0000-000000000001"
	bob   = "bbbbbbbb-0000-0000-0000-000000000002"
	carol = "cccccccc-0000-0000-0000-000000000003"
)

// ==================== 测试替身 ====================

type fakeProfiles struct {
	customers map[string]*external.Customer
}

func (f *fakeProfiles) GetCustomer(ctx context.Context, customerId string) (*external.Customer, error) {
	if c, ok := f.customers[customerId]; ok {
		return c, nil
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "customer not found: %s", customerId)
}

func (f *fakeProfiles) GetCustomers(ctx context.Context, customerIds []string) (map[string]*external.Customer, error) {
	result := make(map[string]*external.Customer)
	for _, id := range customerIds {
		if c, ok := f.customers[id]; ok {
			result[id] = c
		}
	}
	return result, nil
}

type fakeAttachments struct {
	stored []string
}

func (f *fakeAttachments) Store(ctx context.Context, filename string, data []byte) (*external.AttachmentDescriptor, error) {
	f.stored = append(f.stored, filename)
	return &external.AttachmentDescriptor{
		Filename: filename,
		URI:      "https://files.example.com/" + filename,
	}, nil
}

type fakeTrades struct {
	opened []external.OpenTradeRequest
	trades []external.Trade
}

func (f *fakeTrades) OpenTrade(ctx context.Context, req external.OpenTradeRequest) (*external.Trade, error) {
	f.opened = append(f.opened, req)
	trade := external.Trade{
		TradeHash:             fmt.Sprintf("trade-%d", len(f.opened)),
		CryptoCurrency:        req.CryptoCurrency,
		FiatCurrency:          req.FiatCurrency,
		CryptoAmountRequested: req.CryptoAmount,
		FiatAmountRequested:   req.FiatAmount,
		Status:                trade_status_enum.ACTIVE_FUNDED,
		PartnerId:             req.OfferOwnerId,
	}
	f.trades = append(f.trades, trade)
	return &trade, nil
}

func (f *fakeTrades) GetTrade(ctx context.Context, tradeHash string) (*external.Trade, error) {
	for i := range f.trades {
		if f.trades[i].TradeHash == tradeHash {
			return &f.trades[i], nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "trade not found: %s", tradeHash)
}

func (f *fakeTrades) ListTrades(ctx context.Context, customerId string) ([]external.Trade, error) {
	return f.trades, nil
}

// ==================== 测试环境 ====================

type testEnv struct {
	svc    *messageService
	repos  *mysql.Repositories
	clock  *clockwork.FakeClock
	trades *fakeTrades
	files  *fakeAttachments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// 每个测试独立的共享内存库，连接池内所有连接看到同一份数据
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repos := mysql.NewRepositories(db)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	trades := &fakeTrades{}
	files := &fakeAttachments{}
	profiles := &fakeProfiles{customers: map[string]*external.Customer{
		alice: {CustomerId: alice, DisplayName: "Alice"},
		bob:   {CustomerId: bob, DisplayName: "Bob"},
	}}
	pub := eventbus.NewPublisher(&config.KafkaConfig{MessageMode: "channel"})

	svc := NewMessageService(repos, nil, clock, keymutex.New(8), pub, files, trades, profiles)
	return &testEnv{svc: svc, repos: repos, clock: clock, trades: trades, files: files}
}

// seedChat 直接落库一条聊天与双方上下文
func (e *testEnv) seedChat(t *testing.T, a, b string) *model.Chat {
	t.Helper()
	ctx := context.Background()
	chat := &model.Chat{
		Uuid:         "chat-" + a[:8] + "-" + b[:8],
		PairKey:      model.BuildPairKey(a, b),
		OriginatorId: a,
		PartnerId:    b,
	}
	if err := e.repos.Chat.Create(ctx, chat); err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	for _, id := range []string{a, b} {
		cc := &model.ChatContext{
			ChatId:       chat.Uuid,
			CustomerId:   id,
			ChatName:     "test chat",
			Status:       chat_status_enum.ACTIVE,
			ActivityTime: e.clock.Now().UTC(),
		}
		if err := e.repos.ChatContext.Create(ctx, cc); err != nil {
			t.Fatalf("seed chat context: %v", err)
		}
	}
	return chat
}

func (e *testEnv) send(t *testing.T, author, chatId, text string) int64 {
	t.Helper()
	rsp, err := e.svc.SendMessage(context.Background(), author, chatId, request.SendMessageRequest{
		Type: message_type_enum.MESSAGE,
		Text: text,
	})
	if err != nil {
		t.Fatalf("send %q: %v", text, err)
	}
	id, err := strconv.ParseInt(rsp.MessageId, 10, 64)
	if err != nil {
		t.Fatalf("parse message id %q: %v", rsp.MessageId, err)
	}
	return id
}

func (e *testEnv) unreadOf(t *testing.T, chatId, customerId string) int {
	t.Helper()
	cc, err := e.repos.ChatContext.FindByChatAndCustomer(context.Background(), chatId, customerId)
	if err != nil {
		t.Fatalf("load chat context: %v", err)
	}
	return cc.UnreadCount
}

func assertCode(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("want error code %d, got nil", want)
	}
	if got := errorx.GetCode(err); got != want {
		t.Fatalf("want error code %d, got %d (%v)", want, got, err)
	}
}

// ==================== 发送与未读数 ====================

func TestSendMessageUpdatesRecipientUnread(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	env.send(t, alice, chat.Uuid, "hello")
	env.send(t, alice, chat.Uuid, "are you there")

	if got := env.unreadOf(t, chat.Uuid, bob); got != 2 {
		t.Errorf("recipient unread = %d, want 2", got)
	}
	if got := env.unreadOf(t, chat.Uuid, alice); got != 0 {
		t.Errorf("author unread = %d, want 0", got)
	}

	// last_message 指针指向最新消息
	reloaded, err := env.repos.Chat.FindByUuid(ctx, chat.Uuid)
	if err != nil {
		t.Fatalf("reload chat: %v", err)
	}
	if !reloaded.LastMessageId.Valid {
		t.Fatal("last_message_id not set")
	}
}

func TestSendMessageMonotonicSendTime(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	// 时钟不动，连续发送也必须严格递增
	id1 := env.send(t, alice, chat.Uuid, "one")
	id2 := env.send(t, alice, chat.Uuid, "two")
	id3 := env.send(t, bob, chat.Uuid, "three")

	m1, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id1)
	m2, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id2)
	m3, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id3)
	if !m2.SendTime.After(m1.SendTime) || !m3.SendTime.After(m2.SendTime) {
		t.Errorf("send times not strictly increasing: %v %v %v", m1.SendTime, m2.SendTime, m3.SendTime)
	}

	// 单链指针
	if !m2.PrevMessageId.Valid || m2.PrevMessageId.Int64 != id1 {
		t.Errorf("m2.prev = %+v, want %d", m2.PrevMessageId, id1)
	}
	if !m3.PrevMessageId.Valid || m3.PrevMessageId.Int64 != id2 {
		t.Errorf("m3.prev = %+v, want %d", m3.PrevMessageId, id2)
	}
}

func TestSendMessageIdempotentReplay(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	req := request.SendMessageRequest{
		Type:              message_type_enum.MESSAGE,
		Text:              "pay me",
		ExternalRequestId: "req-1",
	}
	first, err := env.svc.SendMessage(ctx, alice, chat.Uuid, req)
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := env.svc.SendMessage(ctx, alice, chat.Uuid, req)
	if err != nil {
		t.Fatalf("replay send: %v", err)
	}
	if first.MessageId != second.MessageId {
		t.Errorf("replay returned different message: %s vs %s", first.MessageId, second.MessageId)
	}

	// 未读数不因重放翻倍
	if got := env.unreadOf(t, chat.Uuid, bob); got != 1 {
		t.Errorf("unread after replay = %d, want 1", got)
	}

	// 同一幂等键不同聊天互不影响
	chat2 := env.seedChat(t, alice, carol)
	if _, err := env.svc.SendMessage(ctx, alice, chat2.Uuid, req); err != nil {
		t.Fatalf("same key in another chat: %v", err)
	}
}

func TestSendMessageNonParticipant(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)

	_, err := env.svc.SendMessage(context.Background(), carol, chat.Uuid, request.SendMessageRequest{
		Type: message_type_enum.MESSAGE,
		Text: "let me in",
	})
	assertCode(t, err, errorx.CodeNotFound)
}

func TestSendMessageToBlockedChat(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	// 接收方拉黑
	if err := env.repos.ChatContext.UpdateStatus(ctx, chat.Uuid, bob, chat_status_enum.BLOCKED); err != nil {
		t.Fatalf("block: %v", err)
	}
	_, err := env.svc.SendMessage(ctx, alice, chat.Uuid, request.SendMessageRequest{
		Type: message_type_enum.MESSAGE, Text: "hello?",
	})
	assertCode(t, err, errorx.CodeRecipientBlocked)

	// 作者自己拉黑的聊天需先解除
	if err := env.repos.ChatContext.UpdateStatus(ctx, chat.Uuid, bob, chat_status_enum.ACTIVE); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if err := env.repos.ChatContext.UpdateStatus(ctx, chat.Uuid, alice, chat_status_enum.BLOCKED); err != nil {
		t.Fatalf("self block: %v", err)
	}
	_, err = env.svc.SendMessage(ctx, alice, chat.Uuid, request.SendMessageRequest{
		Type: message_type_enum.MESSAGE, Text: "hello?",
	})
	assertCode(t, err, errorx.CodeInvalidState)
}

func TestSendMessageRejectsParamsOnPlainTypes(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)

	_, err := env.svc.SendMessage(context.Background(), alice, chat.Uuid, request.SendMessageRequest{
		Type:       message_type_enum.MESSAGE,
		Text:       "hi",
		Parameters: json.RawMessage(`{"foo":1}`),
	})
	assertCode(t, err, errorx.CodeSchemaMismatch)
}

// ==================== 投递状态机 ====================

func TestMarkDeliveredAndRead(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	id1 := env.send(t, alice, chat.Uuid, "one")
	id2 := env.send(t, alice, chat.Uuid, "two")

	rsp, err := env.svc.MarkDelivered(ctx, bob, chat.Uuid, []int64{id1, id2})
	if err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	for _, item := range rsp.Results {
		if !item.Ok {
			t.Errorf("deliver item %s failed: %s", item.MessageId, item.Msg)
		}
	}
	m1, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id1)
	if m1.Status != message_status_enum.DELIVERED {
		t.Errorf("status = %s, want DELIVERED", m1.Status)
	}

	// 投递不清未读，已读才清
	if got := env.unreadOf(t, chat.Uuid, bob); got != 2 {
		t.Errorf("unread after deliver = %d, want 2", got)
	}

	if _, err := env.svc.MarkRead(ctx, bob, chat.Uuid, []int64{id1, id2}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if got := env.unreadOf(t, chat.Uuid, bob); got != 0 {
		t.Errorf("unread after read = %d, want 0", got)
	}

	// 已读后再投递为幂等空操作
	rsp, err = env.svc.MarkDelivered(ctx, bob, chat.Uuid, []int64{id1})
	if err != nil {
		t.Fatalf("redeliver: %v", err)
	}
	if !rsp.Results[0].Ok {
		t.Errorf("redeliver after read should be noop ok, got %s", rsp.Results[0].Msg)
	}
	m1, _ = env.repos.Message.FindByUuid(ctx, chat.Uuid, id1)
	if m1.Status != message_status_enum.READ {
		t.Errorf("status regressed to %s", m1.Status)
	}
}

func TestMarkOwnMessageForbiddenPerItem(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	mine := env.send(t, bob, chat.Uuid, "mine")
	theirs := env.send(t, alice, chat.Uuid, "theirs")

	rsp, err := env.svc.MarkRead(ctx, bob, chat.Uuid, []int64{mine, theirs})
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	byId := map[string]bool{}
	for _, item := range rsp.Results {
		byId[item.MessageId] = item.Ok
	}
	if byId[strconv.FormatInt(mine, 10)] {
		t.Error("marking own message should fail per item")
	}
	if !byId[strconv.FormatInt(theirs, 10)] {
		t.Error("marking counterpart message should succeed")
	}
}

func TestMarkReadNewMessageRejected(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	id := env.send(t, alice, chat.Uuid, "raw")
	msg, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id)
	msg.Status = message_status_enum.NEW
	if err := env.repos.Message.Save(ctx, msg); err != nil {
		t.Fatalf("force NEW: %v", err)
	}

	rsp, err := env.svc.MarkRead(ctx, bob, chat.Uuid, []int64{id})
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	item := rsp.Results[0]
	if item.Ok || item.Code != errorx.CodeInvalidState {
		t.Errorf("NEW message read should fail with InvalidState, got %+v", item)
	}
}

func TestReadAllClearsUnread(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.send(t, alice, chat.Uuid, fmt.Sprintf("msg %d", i))
	}
	if got := env.unreadOf(t, chat.Uuid, bob); got != 5 {
		t.Fatalf("unread = %d, want 5", got)
	}

	if err := env.svc.ReadAll(ctx, bob, chat.Uuid); err != nil {
		t.Fatalf("read all: %v", err)
	}
	if got := env.unreadOf(t, chat.Uuid, bob); got != 0 {
		t.Errorf("unread after read-all = %d, want 0", got)
	}

	// 之后的新消息从零重新计数
	env.send(t, alice, chat.Uuid, "after")
	if got := env.unreadOf(t, chat.Uuid, bob); got != 1 {
		t.Errorf("unread after new message = %d, want 1", got)
	}
}

// ==================== 编辑与隐藏 ====================

func TestUpdateMessage(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	id := env.send(t, alice, chat.Uuid, "typo")

	// 非作者不能编辑
	_, err := env.svc.UpdateMessage(ctx, bob, chat.Uuid, id, request.UpdateMessageRequest{Text: "hacked"})
	assertCode(t, err, errorx.CodeForbidden)

	// SENT 状态编辑：状态不变，盖更新时间戳
	rsp, err := env.svc.UpdateMessage(ctx, alice, chat.Uuid, id, request.UpdateMessageRequest{Text: "fixed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rsp.Status != message_status_enum.SENT {
		t.Errorf("status after edit of SENT = %s, want SENT", rsp.Status)
	}
	if rsp.UpdateTime == "" {
		t.Error("update_time not stamped")
	}

	// 已读后编辑迁移为 UPDATED，且不恢复对方未读数
	if _, err := env.svc.MarkRead(ctx, bob, chat.Uuid, []int64{id}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	rsp, err = env.svc.UpdateMessage(ctx, alice, chat.Uuid, id, request.UpdateMessageRequest{Text: "fixed again"})
	if err != nil {
		t.Fatalf("update after read: %v", err)
	}
	if rsp.Status != message_status_enum.UPDATED {
		t.Errorf("status after edit of READ = %s, want UPDATED", rsp.Status)
	}
	if got := env.unreadOf(t, chat.Uuid, bob); got != 0 {
		t.Errorf("unread restored by edit = %d, want 0", got)
	}
}

func TestHideMessageRecomputesUnread(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	id1 := env.send(t, alice, chat.Uuid, "one")
	env.send(t, alice, chat.Uuid, "two")
	if got := env.unreadOf(t, chat.Uuid, bob); got != 2 {
		t.Fatalf("unread = %d, want 2", got)
	}

	// 非作者非风控不能隐藏
	err := env.svc.HideMessage(ctx, bob, chat.Uuid, id1, false)
	assertCode(t, err, errorx.CodeForbidden)

	// 作者隐藏后未读数随之下降
	if err := env.svc.HideMessage(ctx, alice, chat.Uuid, id1, false); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if got := env.unreadOf(t, chat.Uuid, bob); got != 1 {
		t.Errorf("unread after hide = %d, want 1", got)
	}

	// 风控可隐藏任何人的消息，包括已读的
	id3 := env.send(t, bob, chat.Uuid, "rude")
	if err := env.svc.HideMessage(ctx, carol, chat.Uuid, id3, true); err != nil {
		t.Fatalf("moderator hide: %v", err)
	}
	msg, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id3)
	if msg.Status != message_status_enum.HIDDEN {
		t.Errorf("status = %s, want HIDDEN", msg.Status)
	}
}

// ==================== 列表分页 ====================

func TestListMessagesPagination(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 7; i++ {
		ids = append(ids, env.send(t, alice, chat.Uuid, fmt.Sprintf("msg %d", i)))
	}

	// 第一页
	page1, err := env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{Limit: 3})
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	if len(page1.Messages) != 3 || page1.NextPageToken == "" {
		t.Fatalf("page1: %d messages, token %q", len(page1.Messages), page1.NextPageToken)
	}

	// 第二页从游标续走，无重复无跳漏
	page2, err := env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{Limit: 3, PageToken: page1.NextPageToken})
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	var got []string
	for _, m := range append(page1.Messages, page2.Messages...) {
		got = append(got, m.MessageId)
	}
	for i := 0; i < 6; i++ {
		if got[i] != strconv.FormatInt(ids[i], 10) {
			t.Fatalf("position %d: got %s, want %d", i, got[i], ids[i])
		}
	}

	// last_message_id 播种增量同步
	inc, err := env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{Limit: 10, LastMessageId: ids[4]})
	if err != nil {
		t.Fatalf("incremental: %v", err)
	}
	if len(inc.Messages) != 2 {
		t.Errorf("incremental = %d messages, want 2", len(inc.Messages))
	}

	// 非法游标
	_, err = env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{PageToken: "!!bad!!"})
	assertCode(t, err, errorx.CodeInvalidPageToken)
}

// 翻页期间有新消息写入，已取回的页不漂移，续页不跳漏不重复
func TestListMessagesPaginationStableUnderAppend(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 6; i++ {
		ids = append(ids, env.send(t, alice, chat.Uuid, fmt.Sprintf("msg %d", i)))
	}

	page1, err := env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{Limit: 3})
	if err != nil {
		t.Fatalf("page1: %v", err)
	}

	// 两页之间追加新消息
	for i := 6; i < 8; i++ {
		ids = append(ids, env.send(t, alice, chat.Uuid, fmt.Sprintf("msg %d", i)))
	}

	// 重取第一页，内容不受追加影响
	again, err := env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{Limit: 3})
	if err != nil {
		t.Fatalf("page1 again: %v", err)
	}
	if len(again.Messages) != len(page1.Messages) {
		t.Fatalf("page1 drifted: %d messages, want %d", len(again.Messages), len(page1.Messages))
	}
	for i := range page1.Messages {
		if again.Messages[i].MessageId != page1.Messages[i].MessageId {
			t.Fatalf("page1 position %d drifted: got %s, want %s", i, again.Messages[i].MessageId, page1.Messages[i].MessageId)
		}
	}

	// 用追加前的游标续取第二页
	page2, err := env.svc.ListMessages(ctx, bob, chat.Uuid, request.ListMessagesRequest{Limit: 3, PageToken: page1.NextPageToken})
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	var got []string
	for _, m := range append(page1.Messages, page2.Messages...) {
		got = append(got, m.MessageId)
	}
	if len(got) != 6 {
		t.Fatalf("pages returned %d messages, want 6", len(got))
	}
	for i := 0; i < 6; i++ {
		if got[i] != strconv.FormatInt(ids[i], 10) {
			t.Fatalf("position %d: got %s, want %d", i, got[i], ids[i])
		}
	}
}

// ==================== 附件 ====================

func TestLinkAttachment(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	rsp, err := env.svc.LinkAttachment(ctx, alice, chat.Uuid, request.LinkAttachmentRequest{
		Filename: "receipt.png",
		File:     base64.StdEncoding.EncodeToString([]byte("png bytes")),
	})
	if err != nil {
		t.Fatalf("link attachment: %v", err)
	}
	if rsp.Type != message_type_enum.FILE {
		t.Errorf("type = %s, want FILE", rsp.Type)
	}
	if len(rsp.Attachments) != 1 || rsp.Attachments[0].Filename != "receipt.png" {
		t.Errorf("attachments = %+v", rsp.Attachments)
	}
	if len(env.files.stored) != 1 {
		t.Errorf("attachment service called %d times, want 1", len(env.files.stored))
	}
	if got := env.unreadOf(t, chat.Uuid, bob); got != 1 {
		t.Errorf("unread after file = %d, want 1", got)
	}

	// 非法 base64
	_, err = env.svc.LinkAttachment(ctx, alice, chat.Uuid, request.LinkAttachmentRequest{
		Filename: "x.bin", File: "not base64 !!!",
	})
	assertCode(t, err, errorx.CodeInvalidParam)
}

// ==================== 报价生命周期 ====================

func offerParams(owner string, overrides map[string]any) json.RawMessage {
	m := map[string]any{
		"offer_type":                  "buy",
		"crypto_currency":             "BTC",
		"fiat_currency":               "USD",
		"fiat_price_per_crypto":       "65000.00",
		"crypto_amount":               "0.01",
		"fee_percentage":              "1",
		"fiat_amount":                 "650.00",
		"payment_method_name":         "Bank transfer",
		"payment_method_slug":         "bank-transfer",
		"margin":                      "2",
		"crypto_to_fiat_amount":       "650.00",
		"fee_crypto_amount":           "0.0001",
		"fee_crypto_to_fiat_amount":   "6.50",
		"crypto_amount_total":         "0.0101",
		"crypto_to_fiat_amount_total": "656.50",
		"active":                      true,
		"offer_owner_id":              owner,
		"offer_accepted":              false,
	}
	for k, v := range overrides {
		m[k] = v
	}
	data, _ := json.Marshal(m)
	return data
}

// sendOffer 发出一条报价消息，返回消息 ID 与生成的报价 hash
func (e *testEnv) sendOffer(t *testing.T, owner, chatId string) (int64, string) {
	t.Helper()
	rsp, err := e.svc.SendMessage(context.Background(), owner, chatId, request.SendMessageRequest{
		Type:       message_type_enum.SPECIAL_OFFER,
		Parameters: offerParams(owner, nil),
	})
	if err != nil {
		t.Fatalf("send offer: %v", err)
	}
	id, _ := strconv.ParseInt(rsp.MessageId, 10, 64)
	msg, err := e.repos.Message.FindByUuid(context.Background(), chatId, id)
	if err != nil {
		t.Fatalf("load offer: %v", err)
	}
	return id, msg.OfferHash
}

func TestSendOfferGeneratesHash(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	id, hash := env.sendOffer(t, alice, chat.Uuid)
	if hash == "" {
		t.Fatal("offer hash not generated")
	}
	msg, err := env.repos.Message.FindByUuid(ctx, chat.Uuid, id)
	if err != nil {
		t.Fatalf("load offer: %v", err)
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(msg.Parameters), &params); err != nil {
		t.Fatalf("parameters corrupted: %v", err)
	}
	if params["offer_hash"] != msg.OfferHash {
		t.Errorf("hash column %q != parameters hash %v", msg.OfferHash, params["offer_hash"])
	}

	// 报价 hash 可定位到这条消息
	found, err := env.repos.Message.FindOfferByHash(ctx, chat.Uuid, hash)
	if err != nil {
		t.Fatalf("find by hash: %v", err)
	}
	if found.Uuid != id {
		t.Errorf("found message %d, want %d", found.Uuid, id)
	}
}

func TestCancelOffer(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	_, hash := env.sendOffer(t, alice, chat.Uuid)

	// 不存在的报价 hash
	_, err := env.svc.CancelOffer(ctx, alice, chat.Uuid, "no-such-hash")
	assertCode(t, err, errorx.CodeNotFound)

	// 非主人不能撤销
	_, err = env.svc.CancelOffer(ctx, bob, chat.Uuid, hash)
	assertCode(t, err, errorx.CodeForbidden)

	rsp, err := env.svc.CancelOffer(ctx, alice, chat.Uuid, hash)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	var params map[string]any
	_ = json.Unmarshal(rsp.Parameters, &params)
	if params["active"] != false {
		t.Errorf("offer still active after cancel: %v", params["active"])
	}

	// 已撤销的报价不能接受
	_, err = env.svc.AcceptOffer(ctx, bob, chat.Uuid, hash)
	assertCode(t, err, errorx.CodeInvalidState)
}

func TestAcceptOffer(t *testing.T) {
	env := newTestEnv(t)
	chat := env.seedChat(t, alice, bob)
	ctx := context.Background()

	id, hash := env.sendOffer(t, alice, chat.Uuid)

	// 不存在的报价 hash
	_, err := env.svc.AcceptOffer(ctx, bob, chat.Uuid, "no-such-hash")
	assertCode(t, err, errorx.CodeNotFound)

	// 主人不能接受自己的报价
	_, err = env.svc.AcceptOffer(ctx, alice, chat.Uuid, hash)
	assertCode(t, err, errorx.CodeForbidden)

	rsp, err := env.svc.AcceptOffer(ctx, bob, chat.Uuid, hash)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if rsp.Type != message_type_enum.SPECIAL_TRADE {
		t.Errorf("appended message type = %s, want SPECIAL_TRADE", rsp.Type)
	}
	if len(env.trades.opened) != 1 {
		t.Fatalf("trade engine called %d times, want 1", len(env.trades.opened))
	}

	// 报价标记为已接受
	offer, _ := env.repos.Message.FindByUuid(ctx, chat.Uuid, id)
	var params map[string]any
	_ = json.Unmarshal([]byte(offer.Parameters), &params)
	if params["offer_accepted"] != true {
		t.Error("offer not marked accepted")
	}

	// 双方都有交易视图行，报价主人（消息接收方）未读 +1
	tradeHash := env.trades.trades[0].TradeHash
	ownerTc, err := env.repos.TradeContext.FindByTradeAndCustomer(ctx, tradeHash, alice)
	if err != nil {
		t.Fatalf("owner trade context: %v", err)
	}
	if ownerTc.UnreadCount != 1 {
		t.Errorf("owner trade unread = %d, want 1", ownerTc.UnreadCount)
	}
	if _, err := env.repos.TradeContext.FindByTradeAndCustomer(ctx, tradeHash, bob); err != nil {
		t.Fatalf("taker trade context: %v", err)
	}

	// 再次接受被拒绝
	_, err = env.svc.AcceptOffer(ctx, bob, chat.Uuid, hash)
	assertCode(t, err, errorx.CodeInvalidState)
}

// ==================== 系统消息 ====================

func TestInjectSystemMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := request.SystemMessageRequest{
		CustomerId:        bob,
		Text:              "Your account was verified",
		ExternalRequestId: "sys-1",
	}
	first, err := env.svc.InjectSystemMessage(ctx, req)
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if first.Type != message_type_enum.SYSTEM {
		t.Errorf("type = %s, want SYSTEM", first.Type)
	}

	// 系统聊天按需创建，客户上下文状态为 SYSTEM
	cc, err := env.repos.ChatContext.FindByChatAndCustomer(ctx, first.ChatId, bob)
	if err != nil {
		t.Fatalf("system chat context: %v", err)
	}
	if cc.Status != chat_status_enum.SYSTEM {
		t.Errorf("context status = %s, want SYSTEM", cc.Status)
	}
	if cc.UnreadCount != 1 {
		t.Errorf("system unread = %d, want 1", cc.UnreadCount)
	}

	// 幂等重放
	second, err := env.svc.InjectSystemMessage(ctx, req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.MessageId != second.MessageId {
		t.Errorf("replay returned different message")
	}

	// 第二条消息落在同一系统聊天
	third, err := env.svc.InjectSystemMessage(ctx, request.SystemMessageRequest{
		CustomerId: bob, Text: "Second notice",
	})
	if err != nil {
		t.Fatalf("second inject: %v", err)
	}
	if third.ChatId != first.ChatId {
		t.Errorf("system chat not reused: %s vs %s", third.ChatId, first.ChatId)
	}
}
