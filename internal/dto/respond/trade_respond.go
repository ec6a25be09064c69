package respond

// TradeRespond 交易列表项响应
// 交易数据为交易引擎的只读投影，叠加本服务维护的未读数与显示名
type TradeRespond struct {
	TradeHash             string `json:"trade_hash"`
	TradeName             string `json:"trade_name"`
	CryptoCurrency        string `json:"crypto_currency"`
	FiatCurrency          string `json:"fiat_currency"`
	CryptoAmountRequested string `json:"crypto_amount_requested"`
	FiatAmountRequested   string `json:"fiat_amount_requested"`
	Status                string `json:"status"`
	PartnerId             string `json:"partner_id"`
	UnreadCount           int    `json:"unread_count"`
	CreateTime            string `json:"create_time"`
}

// TradeListRespond 交易列表响应
type TradeListRespond struct {
	Trades []TradeRespond `json:"trades"`
}
