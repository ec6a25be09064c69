package marketing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trade_chat_server/internal/config"
	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/infrastructure/eventbus"
	"trade_chat_server/pkg/enum/marketing/marketing_status_enum"
	"trade_chat_server/pkg/errorx"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*marketingService, *clockwork.FakeClock) {
	t.Helper()

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

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	pub := eventbus.NewPublisher(&config.KafkaConfig{MessageMode: "channel"})
	return NewMarketingService(mysql.NewRepositories(db), clock, pub), clock
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

func createReq(text string) request.CreateMarketingRequest {
	return request.CreateMarketingRequest{
		Text:   text,
		Author: "ops@example.com",
	}
}

func TestCreateImmediatelyVisible(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	rsp, err := svc.Create(ctx, createReq("summer promo"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rsp.Status != marketing_status_enum.ACTIVE {
		t.Errorf("status = %s, want ACTIVE", rsp.Status)
	}
	// 缺省 start_time 取当前时间
	want := clock.Now().UTC().Format(time.RFC3339)
	if rsp.StartTime != want {
		t.Errorf("start_time = %s, want %s", rsp.StartTime, want)
	}

	visible, err := svc.ListVisible(ctx, request.ListMarketingRequest{})
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(visible.Messages) != 1 {
		t.Errorf("visible = %d, want 1", len(visible.Messages))
	}
}

func TestCreateScheduled(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	req := createReq("scheduled promo")
	req.StartTime = clock.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rsp, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rsp.Status != marketing_status_enum.PENDING {
		t.Errorf("status = %s, want PENDING", rsp.Status)
	}

	// 到期前不可见
	visible, err := svc.ListVisible(ctx, request.ListMarketingRequest{})
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(visible.Messages) != 0 {
		t.Fatalf("visible before start = %d, want 0", len(visible.Messages))
	}

	// 到期后无需状态翻转即可见
	clock.Advance(2 * time.Hour)
	visible, err = svc.ListVisible(ctx, request.ListMarketingRequest{})
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(visible.Messages) != 1 {
		t.Errorf("visible after start = %d, want 1", len(visible.Messages))
	}
}

func TestCreateBadStartTime(t *testing.T) {
	svc, _ := newTestService(t)
	req := createReq("promo")
	req.StartTime = "tomorrow at noon"
	_, err := svc.Create(context.Background(), req)
	assertCode(t, err, errorx.CodeInvalidParam)
}

func TestCreateIdempotentReplay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := createReq("promo")
	req.ExternalRequestId = "req-1"
	first, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	// 重复请求重放首次结果而不是新建
	req.Text = "different text"
	second, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.MarketingId != second.MarketingId {
		t.Errorf("replay produced new message: %s vs %s", first.MarketingId, second.MarketingId)
	}
	if second.Text != "promo" {
		t.Errorf("replay text = %q, want original", second.Text)
	}
}

func TestUpdate(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	rsp, err := svc.Create(ctx, createReq("promo"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, rsp.MarketingId, request.UpdateMarketingRequest{
		Text:  "revised promo",
		Title: "Big Sale",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "revised promo" || updated.Title != "Big Sale" {
		t.Errorf("updated = %+v", updated)
	}

	// 起始时间改到未来回到 PENDING
	futureStart := clock.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	updated, err = svc.Update(ctx, rsp.MarketingId, request.UpdateMarketingRequest{StartTime: futureStart})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if updated.Status != marketing_status_enum.PENDING {
		t.Errorf("status = %s, want PENDING", updated.Status)
	}
}

func TestUpdateDeletedIsTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsp, err := svc.Create(ctx, createReq("promo"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, rsp.MarketingId, request.UpdateMarketingRequest{
		Status: marketing_status_enum.DELETED,
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// 删除后不可见
	visible, err := svc.ListVisible(ctx, request.ListMarketingRequest{})
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(visible.Messages) != 0 {
		t.Errorf("visible = %d, want 0", len(visible.Messages))
	}

	// 终态不可迁出
	_, err = svc.Update(ctx, rsp.MarketingId, request.UpdateMarketingRequest{
		Status: marketing_status_enum.ACTIVE,
	})
	assertCode(t, err, errorx.CodeInvalidState)
}

func TestListPaginationAndStatusFilter(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, createReq(fmt.Sprintf("promo %d", i))); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	scheduled := createReq("scheduled")
	scheduled.StartTime = clock.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	if _, err := svc.Create(ctx, scheduled); err != nil {
		t.Fatalf("create scheduled: %v", err)
	}

	seen := map[string]bool{}
	token := ""
	for {
		page, err := svc.List(ctx, request.ListMarketingRequest{Limit: 2, PageToken: token})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, m := range page.Messages {
			if seen[m.MarketingId] {
				t.Fatalf("duplicate across pages: %s", m.MarketingId)
			}
			seen[m.MarketingId] = true
		}
		if page.NextPageToken == "" || len(page.Messages) == 0 {
			break
		}
		token = page.NextPageToken
	}
	if len(seen) != 4 {
		t.Errorf("paged total = %d, want 4", len(seen))
	}

	pending, err := svc.List(ctx, request.ListMarketingRequest{
		Statuses: []string{marketing_status_enum.PENDING},
	})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending.Messages) != 1 || pending.Messages[0].Text != "scheduled" {
		t.Errorf("pending list: %+v", pending.Messages)
	}
}
