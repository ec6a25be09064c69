// Package params 解析并校验结构化消息参数
// 消息的 parameters 是由类型标记的变体：每种特殊消息类型对应一个独立的
// 参数结构，形状不符返回 SchemaMismatch，未知字段容忍，金额一律用
// 十进制字符串校验，绝不走浮点
package params

import (
	"encoding/json"

	"trade_chat_server/pkg/enum/message/message_type_enum"
	"trade_chat_server/pkg/enum/offer/offer_type_enum"
	"trade_chat_server/pkg/errorx"

	"github.com/shopspring/decimal"
)

// SpecialOfferParameters 报价消息参数
type SpecialOfferParameters struct {
	OfferType               string `json:"offer_type"`
	CryptoCurrency          string `json:"crypto_currency"`
	FiatCurrency            string `json:"fiat_currency"`
	FiatPricePerCrypto      string `json:"fiat_price_per_crypto"`
	CryptoAmount            string `json:"crypto_amount"`
	FeePercentage           string `json:"fee_percentage"`
	FiatAmount              string `json:"fiat_amount"`
	PaymentMethodName       string `json:"payment_method_name"`
	PaymentMethodSlug       string `json:"payment_method_slug"`
	Margin                  string `json:"margin"`
	CryptoToFiatAmount      string `json:"crypto_to_fiat_amount"`
	FeeCryptoAmount         string `json:"fee_crypto_amount"`
	FeeCryptoToFiatAmount   string `json:"fee_crypto_to_fiat_amount"`
	CryptoAmountTotal       string `json:"crypto_amount_total"`
	CryptoToFiatAmountTotal string `json:"crypto_to_fiat_amount_total"`
	Active                  bool   `json:"active"`
	OfferOwnerId            string `json:"offer_owner_id"`
	OfferAccepted           bool   `json:"offer_accepted"`
	OfferHash               string `json:"offer_hash"`
}

// SpecialTradeParameters 交易消息参数
type SpecialTradeParameters struct {
	OfferType               string `json:"offer_type"`
	CryptoCurrency          string `json:"crypto_currency"`
	FiatCurrency            string `json:"fiat_currency"`
	FiatPricePerCrypto      string `json:"fiat_price_per_crypto"`
	CryptoAmountRequested   string `json:"crypto_amount_requested"`
	CryptoAmountTotal       string `json:"crypto_amount_total"`
	FeePercentage           string `json:"fee_percentage"`
	FeeCryptoAmount         string `json:"fee_crypto_amount"`
	FiatAmountRequested     string `json:"fiat_amount_requested"`
	PaymentMethodName       string `json:"payment_method_name"`
	PaymentMethodSlug       string `json:"payment_method_slug"`
	Margin                  string `json:"margin"`
	CryptoToFiatAmount      string `json:"crypto_to_fiat_amount"`
	FeeCryptoToFiatAmount   string `json:"fee_crypto_to_fiat_amount"`
	CryptoToFiatAmountTotal string `json:"crypto_to_fiat_amount_total"`
	TradeStatus             string `json:"trade_status"`
	OfferOwnerId            string `json:"offer_owner_id"`
	TradeHash               string `json:"trade_hash"`
}

// InternalTransferParameters 站内转账消息参数
type InternalTransferParameters struct {
	Id               string `json:"id"`
	Status           string `json:"status"`
	CryptoCurrency   string `json:"crypto_currency"`
	FiatCurrency     string `json:"fiat_currency"`
	CryptoAmount     string `json:"crypto_amount"`
	FiatAmount       string `json:"fiat_amount"`
	SenderCustomerId string `json:"sender_customer_id"`

	// 可选字段，为空时跳过十进制校验
	CryptoTotalAmount string `json:"crypto_total_amount,omitempty"`
	CryptoFee         string `json:"crypto_fee,omitempty"`
	FiatTotalAmount   string `json:"fiat_total_amount,omitempty"`
	FiatFee           string `json:"fiat_fee,omitempty"`
}

// SystemMessagePlaceholders 系统消息占位符
type SystemMessagePlaceholders struct {
	Hash string `json:"hash,omitempty"`
}

// SystemMessageParameters 系统消息参数，全部字段可选
type SystemMessageParameters struct {
	Type                string                     `json:"type,omitempty"`
	Link                string                     `json:"link,omitempty"`
	LinkText            string                     `json:"link_text,omitempty"`
	Message             string                     `json:"message,omitempty"`
	Title               string                     `json:"title,omitempty"`
	ChatId              string                     `json:"chat_id,omitempty"`
	MessagePlaceholders *SystemMessagePlaceholders `json:"message_placeholders,omitempty"`
}

// Resolved 解析结果，按消息类型只有一个字段非空
type Resolved struct {
	Offer    *SpecialOfferParameters
	Trade    *SpecialTradeParameters
	Transfer *InternalTransferParameters
	System   *SystemMessageParameters
}

// Resolve 按消息类型解析 raw 参数
// MESSAGE/FILE 不允许携带参数；特殊类型缺参数或形状不符返回 SchemaMismatch
func Resolve(messageType string, raw json.RawMessage) (*Resolved, error) {
	hasRaw := len(raw) > 0 && string(raw) != "null"

	if !message_type_enum.HasParameters(messageType) {
		if hasRaw {
			return nil, errorx.Newf(errorx.CodeSchemaMismatch, "消息类型 %s 不允许携带 parameters", messageType)
		}
		return &Resolved{}, nil
	}
	if !hasRaw {
		return nil, errorx.Newf(errorx.CodeSchemaMismatch, "消息类型 %s 必须携带 parameters", messageType)
	}

	switch messageType {
	case message_type_enum.SPECIAL_OFFER:
		var p SpecialOfferParameters
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errorx.Wrap(err, errorx.CodeSchemaMismatch, "SPECIAL_OFFER 参数形状不符")
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return &Resolved{Offer: &p}, nil
	case message_type_enum.SPECIAL_TRADE:
		var p SpecialTradeParameters
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errorx.Wrap(err, errorx.CodeSchemaMismatch, "SPECIAL_TRADE 参数形状不符")
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return &Resolved{Trade: &p}, nil
	case message_type_enum.INTERNAL_TRANSFER:
		var p InternalTransferParameters
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errorx.Wrap(err, errorx.CodeSchemaMismatch, "INTERNAL_TRANSFER 参数形状不符")
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return &Resolved{Transfer: &p}, nil
	case message_type_enum.SYSTEM:
		var p SystemMessageParameters
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errorx.Wrap(err, errorx.CodeSchemaMismatch, "SYSTEM 参数形状不符")
		}
		return &Resolved{System: &p}, nil
	}
	return nil, errorx.Newf(errorx.CodeSchemaMismatch, "未知消息类型 %s", messageType)
}

// requireDecimal 校验必填十进制字符串字段
func requireDecimal(field, value string) error {
	if value == "" {
		return errorx.Newf(errorx.CodeSchemaMismatch, "字段 %s 不能为空", field)
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return errorx.Wrapf(err, errorx.CodeSchemaMismatch, "字段 %s 不是合法的十进制数: %s", field, value)
	}
	return nil
}

// optionalDecimal 校验可选十进制字符串字段
func optionalDecimal(field, value string) error {
	if value == "" {
		return nil
	}
	return requireDecimal(field, value)
}

func (p *SpecialOfferParameters) validate() error {
	if !offer_type_enum.Valid(p.OfferType) {
		return errorx.Newf(errorx.CodeSchemaMismatch, "offer_type 取值非法: %s", p.OfferType)
	}
	if p.OfferOwnerId == "" {
		return errorx.New(errorx.CodeSchemaMismatch, "offer_owner_id 不能为空")
	}
	decimals := map[string]string{
		"fiat_price_per_crypto":       p.FiatPricePerCrypto,
		"crypto_amount":               p.CryptoAmount,
		"fee_percentage":              p.FeePercentage,
		"fiat_amount":                 p.FiatAmount,
		"margin":                      p.Margin,
		"crypto_to_fiat_amount":       p.CryptoToFiatAmount,
		"fee_crypto_amount":           p.FeeCryptoAmount,
		"fee_crypto_to_fiat_amount":   p.FeeCryptoToFiatAmount,
		"crypto_amount_total":         p.CryptoAmountTotal,
		"crypto_to_fiat_amount_total": p.CryptoToFiatAmountTotal,
	}
	for field, value := range decimals {
		if err := requireDecimal(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (p *SpecialTradeParameters) validate() error {
	if !offer_type_enum.Valid(p.OfferType) {
		return errorx.Newf(errorx.CodeSchemaMismatch, "offer_type 取值非法: %s", p.OfferType)
	}
	if p.OfferOwnerId == "" {
		return errorx.New(errorx.CodeSchemaMismatch, "offer_owner_id 不能为空")
	}
	if p.TradeStatus == "" {
		return errorx.New(errorx.CodeSchemaMismatch, "trade_status 不能为空")
	}
	decimals := map[string]string{
		"fiat_price_per_crypto":       p.FiatPricePerCrypto,
		"crypto_amount_requested":     p.CryptoAmountRequested,
		"crypto_amount_total":         p.CryptoAmountTotal,
		"fee_percentage":              p.FeePercentage,
		"fee_crypto_amount":           p.FeeCryptoAmount,
		"fiat_amount_requested":       p.FiatAmountRequested,
		"margin":                      p.Margin,
		"crypto_to_fiat_amount":       p.CryptoToFiatAmount,
		"fee_crypto_to_fiat_amount":   p.FeeCryptoToFiatAmount,
		"crypto_to_fiat_amount_total": p.CryptoToFiatAmountTotal,
	}
	for field, value := range decimals {
		if err := requireDecimal(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (p *InternalTransferParameters) validate() error {
	if p.Id == "" {
		return errorx.New(errorx.CodeSchemaMismatch, "id 不能为空")
	}
	if p.SenderCustomerId == "" {
		return errorx.New(errorx.CodeSchemaMismatch, "sender_customer_id 不能为空")
	}
	if err := requireDecimal("crypto_amount", p.CryptoAmount); err != nil {
		return err
	}
	if err := requireDecimal("fiat_amount", p.FiatAmount); err != nil {
		return err
	}
	optionals := map[string]string{
		"crypto_total_amount": p.CryptoTotalAmount,
		"crypto_fee":          p.CryptoFee,
		"fiat_total_amount":   p.FiatTotalAmount,
		"fiat_fee":            p.FiatFee,
	}
	for field, value := range optionals {
		if err := optionalDecimal(field, value); err != nil {
			return err
		}
	}
	return nil
}
