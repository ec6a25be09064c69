package params

import (
	"encoding/json"
	"errors"
	"testing"

	"trade_chat_server/pkg/enum/message/message_type_enum"
	"trade_chat_server/pkg/errorx"
)

func offerJSON(overrides map[string]any) json.RawMessage {
	base := map[string]any{
		"offer_type":                  "sell",
		"crypto_currency":             "BTC",
		"fiat_currency":               "USD",
		"fiat_price_per_crypto":       "19900",
		"crypto_amount":               "0.005",
		"fee_percentage":              "2",
		"fiat_amount":                 "100",
		"payment_method_name":         "Amazon Gift Card",
		"payment_method_slug":         "amazon-gift-card",
		"margin":                      "19900",
		"crypto_to_fiat_amount":       "99.5",
		"fee_crypto_amount":           "0.0001",
		"fee_crypto_to_fiat_amount":   "2.5",
		"crypto_amount_total":         "0.0051",
		"crypto_to_fiat_amount_total": "100.5",
		"active":                      true,
		"offer_owner_id":              "7f5d04a1-3fb0-44f7-9a88-cf2f31d0d2cc",
		"offer_accepted":              false,
	}
	for k, v := range overrides {
		if v == nil {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
	data, _ := json.Marshal(base)
	return data
}

func assertSchemaMismatch(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("期望 SchemaMismatch 错误，实际为 nil")
	}
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) || codeErr.Code != errorx.CodeSchemaMismatch {
		t.Fatalf("期望错误码 %d，实际 %v", errorx.CodeSchemaMismatch, err)
	}
}

func TestResolveOffer(t *testing.T) {
	resolved, err := Resolve(message_type_enum.SPECIAL_OFFER, offerJSON(nil))
	if err != nil {
		t.Fatalf("解析合法报价参数失败: %v", err)
	}
	if resolved.Offer == nil {
		t.Fatal("期望 Offer 非空")
	}
	if resolved.Offer.CryptoAmount != "0.005" {
		t.Errorf("crypto_amount = %s", resolved.Offer.CryptoAmount)
	}
}

func TestResolveOfferBadDecimal(t *testing.T) {
	_, err := Resolve(message_type_enum.SPECIAL_OFFER, offerJSON(map[string]any{
		"crypto_amount": "0.005abc",
	}))
	assertSchemaMismatch(t, err)
}

func TestResolveOfferMissingDecimal(t *testing.T) {
	_, err := Resolve(message_type_enum.SPECIAL_OFFER, offerJSON(map[string]any{
		"fiat_amount": nil,
	}))
	assertSchemaMismatch(t, err)
}

func TestResolveOfferBadType(t *testing.T) {
	_, err := Resolve(message_type_enum.SPECIAL_OFFER, offerJSON(map[string]any{
		"offer_type": "lend",
	}))
	assertSchemaMismatch(t, err)
}

func TestResolveOfferUnknownFieldsTolerated(t *testing.T) {
	_, err := Resolve(message_type_enum.SPECIAL_OFFER, offerJSON(map[string]any{
		"some_future_field": "whatever",
	}))
	if err != nil {
		t.Fatalf("未知字段应被容忍: %v", err)
	}
}

func TestResolvePlainMessageRejectsParameters(t *testing.T) {
	_, err := Resolve(message_type_enum.MESSAGE, json.RawMessage(`{"foo":"bar"}`))
	assertSchemaMismatch(t, err)

	_, err = Resolve(message_type_enum.FILE, json.RawMessage(`{"foo":"bar"}`))
	assertSchemaMismatch(t, err)
}

func TestResolvePlainMessageWithoutParameters(t *testing.T) {
	resolved, err := Resolve(message_type_enum.MESSAGE, nil)
	if err != nil {
		t.Fatalf("普通消息不带参数应通过: %v", err)
	}
	if resolved.Offer != nil || resolved.Trade != nil || resolved.Transfer != nil || resolved.System != nil {
		t.Fatal("普通消息的解析结果应全部为空")
	}
}

func TestResolveSpecialWithoutParameters(t *testing.T) {
	_, err := Resolve(message_type_enum.SPECIAL_TRADE, nil)
	assertSchemaMismatch(t, err)

	_, err = Resolve(message_type_enum.SPECIAL_TRADE, json.RawMessage("null"))
	assertSchemaMismatch(t, err)
}

func TestResolveTransfer(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "1f3d24a1-3fb0-44f7-9a88-cf2f31d0d2cc",
		"status": "success",
		"crypto_currency": "BTC",
		"fiat_currency": "USD",
		"crypto_amount": "0.005",
		"fiat_amount": "100",
		"sender_customer_id": "9e5d04a1-3fb0-44f7-9a88-cf2f31d0d2cc"
	}`)
	resolved, err := Resolve(message_type_enum.INTERNAL_TRANSFER, raw)
	if err != nil {
		t.Fatalf("解析合法转账参数失败: %v", err)
	}
	if resolved.Transfer == nil || resolved.Transfer.Status != "success" {
		t.Fatal("转账参数解析结果不符")
	}
}

func TestResolveTransferOptionalDecimal(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "op-1",
		"status": "success",
		"crypto_currency": "BTC",
		"fiat_currency": "USD",
		"crypto_amount": "0.005",
		"fiat_amount": "100",
		"sender_customer_id": "9e5d04a1-3fb0-44f7-9a88-cf2f31d0d2cc",
		"fiat_fee": "bad-number"
	}`)
	_, err := Resolve(message_type_enum.INTERNAL_TRANSFER, raw)
	assertSchemaMismatch(t, err)
}

func TestResolveSystemAllOptional(t *testing.T) {
	resolved, err := Resolve(message_type_enum.SYSTEM, json.RawMessage(`{"type":"referrer_message"}`))
	if err != nil {
		t.Fatalf("系统消息参数解析失败: %v", err)
	}
	if resolved.System == nil || resolved.System.Type != "referrer_message" {
		t.Fatal("系统消息参数解析结果不符")
	}
}

func TestResolveSystemWrongShape(t *testing.T) {
	_, err := Resolve(message_type_enum.SYSTEM, json.RawMessage(`["not","an","object"]`))
	assertSchemaMismatch(t, err)
}
