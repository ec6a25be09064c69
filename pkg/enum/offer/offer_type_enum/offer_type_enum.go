// Package offer_type_enum 定义报价方向（从报价主人的视角）
package offer_type_enum

const (
	SELL = "sell"
	BUY  = "buy"
)

// Valid 校验取值是否合法
func Valid(t string) bool {
	return t == SELL || t == BUY
}
