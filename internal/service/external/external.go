// Package external 定义核心依赖的外部协作方契约
// 资料服务、附件服务、交易引擎都在别的系统里，核心只通过这些接口访问
package external

import (
	"context"
	"time"
)

// Customer 客户展示资料，来自资料服务，允许缓存和轻微过期
type Customer struct {
	CustomerId  string `json:"customer_id"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"` // ONLINE / OFFLINE / BANNED
	Country     string `json:"country,omitempty"`
}

// AttachmentDescriptor 附件服务存储后返回的描述符
// 核心只保存描述符，不保存文件本体
type AttachmentDescriptor struct {
	Filename     string `json:"filename"`
	URI          string `json:"uri"`
	ThumbnailURI string `json:"thumbnail_uri,omitempty"`
}

// OfferInfo 交易所属报价的只读信息
type OfferInfo struct {
	OfferType         string `json:"offer_type"` // sell / buy，报价方视角
	OfferOwnerId      string `json:"offer_owner_id"`
	OfferMargin       string `json:"offer_margin"`
	PaymentMethodSlug string `json:"payment_method_slug,omitempty"`
	PaymentMethodName string `json:"payment_method_name,omitempty"`
}

// Trade 交易引擎中的交易投影，核心只读
type Trade struct {
	TradeHash             string    `json:"trade_hash"`
	CryptoCurrency        string    `json:"crypto_currency"`
	FiatCurrency          string    `json:"fiat_currency"`
	CryptoAmountRequested string    `json:"crypto_amount_requested"`
	FiatAmountRequested   string    `json:"fiat_amount_requested"`
	CryptoToFiatAmount    string    `json:"crypto_to_fiat_amount"`
	CreateTime            time.Time `json:"create_time"`
	Status                string    `json:"status"` // 见 trade_status_enum
	Offer                 OfferInfo `json:"offer"`
	PartnerId             string    `json:"partner_id"`
}

// OpenTradeRequest 接受报价后开启交易的请求
type OpenTradeRequest struct {
	OfferHash      string `json:"offer_hash"`
	OfferOwnerId   string `json:"offer_owner_id"`
	TakerId        string `json:"taker_id"`
	CryptoCurrency string `json:"crypto_currency"`
	FiatCurrency   string `json:"fiat_currency"`
	CryptoAmount   string `json:"crypto_amount"`
	FiatAmount     string `json:"fiat_amount"`
}

// ProfileDirectory 客户资料目录
type ProfileDirectory interface {
	// GetCustomer 按 id 查询客户资料
	GetCustomer(ctx context.Context, customerId string) (*Customer, error)
	// GetCustomers 批量查询客户资料，返回按 customer_id 索引的映射
	GetCustomers(ctx context.Context, customerIds []string) (map[string]*Customer, error)
}

// Attachments 附件存储服务
type Attachments interface {
	// Store 上传文件字节，返回存储描述符
	Store(ctx context.Context, filename string, data []byte) (*AttachmentDescriptor, error)
}

// TradeEngine 交易引擎
type TradeEngine interface {
	// OpenTrade 根据被接受的报价开启交易
	OpenTrade(ctx context.Context, req OpenTradeRequest) (*Trade, error)
	// GetTrade 查询交易
	GetTrade(ctx context.Context, tradeHash string) (*Trade, error)
	// ListTrades 列出客户参与的交易
	ListTrades(ctx context.Context, customerId string) ([]Trade, error)
}
