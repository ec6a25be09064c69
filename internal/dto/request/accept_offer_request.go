package request

// AcceptOfferRequest 接受报价请求
// 使用位置:
//   - internal/handler/message_handler.go: AcceptOfferHandler
type AcceptOfferRequest struct {
	OfferHash string `json:"offer_hash" binding:"required,max=40"`
}
