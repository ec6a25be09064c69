// Package trade_status_enum 定义交易状态（只读投影，归交易引擎所有）
package trade_status_enum

const (
	NOT_FUNDED          = "Not funded"
	FUNDS_PROCESSING    = "Funds processing"
	FUNDS_PROCESSED     = "Funds processed"
	ACTIVE_FUNDED       = "Active funded"
	PAID                = "Paid"
	CANCELLED_SYSTEM    = "Cancelled system"
	CANCELLED_BUYER     = "Cancelled buyer"
	CANCELLED_SELLER    = "Cancelled seller"
	RELEASED            = "Released"
	DISPUTE_OPEN        = "Dispute open"
	DISPUTE_WINS_SELLER = "Dispute wins seller"
	DISPUTE_WINS_BUYER  = "Dispute wins buyer"
)
