package contact

import (
	"context"
	"fmt"
	"testing"

	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/pkg/enum/contact/contact_type_enum"
	"trade_chat_server/pkg/errorx"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	alice = "aaaaaaaa-0000-0000-0000-000000000001"
	bob   = "bbbbbbbb-0000-0000-0000-000000000002"
)

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

func newTestService(t *testing.T) (*contactService, *fakeProfiles) {
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

	profiles := &fakeProfiles{customers: map[string]*external.Customer{
		bob: {CustomerId: bob, DisplayName: "Bob"},
	}}
	return NewContactService(mysql.NewRepositories(db), profiles), profiles
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

func TestAddContact(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsp, err := svc.AddContact(ctx, alice, request.AddContactRequest{
		CustomerId:  bob,
		DisplayName: "Bobby",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rsp.CustomerId != bob || rsp.DisplayName != "Bobby" {
		t.Errorf("respond = %+v", rsp)
	}
	// 类型缺省为 TRUSTED
	if rsp.Type != contact_type_enum.TRUSTED {
		t.Errorf("type = %s, want TRUSTED", rsp.Type)
	}

	// 重复添加同一联系人
	_, err = svc.AddContact(ctx, alice, request.AddContactRequest{CustomerId: bob})
	assertCode(t, err, errorx.CodeAlreadyExists)
}

func TestAddContactSelf(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddContact(context.Background(), alice, request.AddContactRequest{CustomerId: alice})
	assertCode(t, err, errorx.CodeInvalidParam)
}

func TestAddContactDisplayNameFromDirectory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 未指定显示名时取资料目录里的显示名
	rsp, err := svc.AddContact(ctx, alice, request.AddContactRequest{CustomerId: bob})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rsp.DisplayName != "Bob" {
		t.Errorf("display name = %q, want Bob", rsp.DisplayName)
	}
}

func TestAddContactUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddContact(context.Background(), alice, request.AddContactRequest{
		CustomerId: "dddddddd-0000-0000-0000-000000000004",
	})
	assertCode(t, err, errorx.CodeNotFound)
}

func TestUpdateContactType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddContact(ctx, alice, request.AddContactRequest{CustomerId: bob}); err != nil {
		t.Fatalf("add: %v", err)
	}

	rsp, err := svc.UpdateContact(ctx, alice, bob, request.UpdateContactRequest{Type: contact_type_enum.BLOCKED})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rsp.Type != contact_type_enum.BLOCKED {
		t.Errorf("type = %s, want BLOCKED", rsp.Type)
	}

	got, err := svc.GetContact(ctx, alice, bob)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != contact_type_enum.BLOCKED {
		t.Errorf("persisted type = %s, want BLOCKED", got.Type)
	}

	// 不存在的关系
	_, err = svc.UpdateContact(ctx, bob, alice, request.UpdateContactRequest{Type: contact_type_enum.TRUSTED})
	assertCode(t, err, errorx.CodeNotFound)
}

func TestListContacts(t *testing.T) {
	svc, profiles := newTestService(t)
	ctx := context.Background()

	names := []string{"Carol", "Alice", "Bob"}
	for i, name := range names {
		id := fmt.Sprintf("%08d-0000-0000-0000-00000000000%d", i, i)
		profiles.customers[id] = &external.Customer{CustomerId: id, DisplayName: name}
		if _, err := svc.AddContact(ctx, alice, request.AddContactRequest{CustomerId: id}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	// 显示名升序分页，两页无缝衔接
	page1, err := svc.ListContacts(ctx, alice, request.ListContactsRequest{Limit: 2})
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	if len(page1.Contacts) != 2 || page1.NextPageToken == "" {
		t.Fatalf("page1: %d contacts, token %q", len(page1.Contacts), page1.NextPageToken)
	}
	if page1.Contacts[0].DisplayName != "Alice" || page1.Contacts[1].DisplayName != "Bob" {
		t.Errorf("page1 order: %s, %s", page1.Contacts[0].DisplayName, page1.Contacts[1].DisplayName)
	}

	page2, err := svc.ListContacts(ctx, alice, request.ListContactsRequest{Limit: 2, PageToken: page1.NextPageToken})
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	if len(page2.Contacts) != 1 || page2.Contacts[0].DisplayName != "Carol" {
		t.Fatalf("page2: %+v", page2.Contacts)
	}
	if page2.PrevPageToken == "" {
		t.Error("page2 missing prev token")
	}

	// 类型过滤
	if _, err := svc.UpdateContact(ctx, alice, page1.Contacts[0].CustomerId, request.UpdateContactRequest{Type: contact_type_enum.BLOCKED}); err != nil {
		t.Fatalf("block: %v", err)
	}
	blocked, err := svc.ListContacts(ctx, alice, request.ListContactsRequest{Types: []string{contact_type_enum.BLOCKED}})
	if err != nil {
		t.Fatalf("list blocked: %v", err)
	}
	if len(blocked.Contacts) != 1 || blocked.Contacts[0].DisplayName != "Alice" {
		t.Errorf("blocked list: %+v", blocked.Contacts)
	}

	// 名称检索
	found, err := svc.ListContacts(ctx, alice, request.ListContactsRequest{Q: "Car"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found.Contacts) != 1 || found.Contacts[0].DisplayName != "Carol" {
		t.Errorf("search result: %+v", found.Contacts)
	}
}
