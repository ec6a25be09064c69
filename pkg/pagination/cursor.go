// Package pagination 提供不透明分页游标的编解码
// 游标编码"最后一个条目的排序键"，而不是偏移量：
// 偏移量在并发插入下会漂移，导致翻页丢项或重复，这里明确不支持
package pagination

import (
	"encoding/base64"
	"encoding/json"

	"trade_chat_server/pkg/constants"
	"trade_chat_server/pkg/errorx"
)

// Cursor 排序键位置
// 时间排序的集合使用 SortTime（UnixNano），文本排序的集合使用 SortText，
// ID 作为排序键相同时候的平局裁决
type Cursor struct {
	SortTime int64  `json:"t,omitempty"` // 时间排序键（UnixNano）
	SortText string `json:"s,omitempty"` // 文本排序键
	ID       string `json:"id"`          // 平局裁决 ID
	Desc     bool   `json:"d,omitempty"` // 集合排序方向
	Prev     bool   `json:"p,omitempty"` // 是否为向前翻页游标
}

// Encode 将游标编码为 URL 安全的不透明 token
func Encode(c Cursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode 解析 token，非法输入返回 CodeInvalidPageToken
func Decode(token string) (Cursor, error) {
	var c Cursor
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, errorx.Wrap(err, errorx.CodeInvalidPageToken, "分页游标非法")
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, errorx.Wrap(err, errorx.CodeInvalidPageToken, "分页游标非法")
	}
	if c.ID == "" {
		return c, errorx.New(errorx.CodeInvalidPageToken, "分页游标非法")
	}
	return c, nil
}

// NormalizeLimit 归一化分页大小
// 未指定时使用默认值，超过上限时收敛到上限
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return constants.DEFAULT_PAGE_LIMIT
	}
	if limit > constants.MAX_PAGE_LIMIT {
		return constants.MAX_PAGE_LIMIT
	}
	return limit
}
