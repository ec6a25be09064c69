// Package accept_messages_enum 定义客户接收陌生人消息的隐私设置
package accept_messages_enum

const (
	YES                        = "YES"                        // 任何人可建聊
	NO                         = "NO"                         // 拒绝所有新建聊
	TRUSTED_ONLY               = "TRUSTED_ONLY"               // 仅信任联系人
	TRUSTED_AND_TRADE_PARTNERS = "TRUSTED_AND_TRADE_PARTNERS" // 信任联系人与交易对手
)

// Valid 校验取值是否合法
func Valid(v string) bool {
	switch v {
	case YES, NO, TRUSTED_ONLY, TRUSTED_AND_TRADE_PARTNERS:
		return true
	}
	return false
}
