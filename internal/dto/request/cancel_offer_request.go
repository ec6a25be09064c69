package request

// CancelOfferRequest 撤销报价请求
// 报价以 offer_hash 定位，客户端不感知内部消息 ID
// 使用位置:
//   - internal/handler/message_handler.go: CancelOfferHandler
type CancelOfferRequest struct {
	OfferHash string `json:"offer_hash" binding:"required,max=40"`
}
