// Package unread 维护未读数不变式
// 不变式：参与者的 unread_count 恒等于对方发出的、未被隐藏的、创建时间晚于
// 己方已读位置的消息数。每次影响该计数的写操作都在同一事务内调用这里重算，
// 从不做增量加减，竞态下增量会漂移而重算不会
package unread

import (
	"context"
	"time"

	"trade_chat_server/internal/dao/mysql"
	"trade_chat_server/internal/model"
	"trade_chat_server/pkg/enum/chat/chat_status_enum"
	"trade_chat_server/pkg/errorx"
)

// readPosition 取出上下文已读位置对应的 (send_time, message_id)
// 从未读过任何消息时返回零值，表示从头计数
func readPosition(ctx context.Context, repos *mysql.Repositories, cc *model.ChatContext) (time.Time, int64, error) {
	if !cc.ReadMessageId.Valid {
		return time.Time{}, 0, nil
	}
	msg, err := repos.Message.FindByUuid(ctx, cc.ChatId, cc.ReadMessageId.Int64)
	if err != nil {
		if errorx.IsNotFound(err) {
			// 已读位置指向的消息被清理，退化为从头计数
			return time.Time{}, 0, nil
		}
		return time.Time{}, 0, err
	}
	return msg.SendTime, msg.Uuid, nil
}

// Recompute 重算单个参与者上下文的未读数并落库
// 必须在与触发变更相同的事务内调用
func Recompute(ctx context.Context, repos *mysql.Repositories, chat *model.Chat, cc *model.ChatContext) error {
	after, afterId, err := readPosition(ctx, repos, cc)
	if err != nil {
		return err
	}
	count, err := repos.Message.CountUnread(ctx, chat.Uuid, chat.Counterpart(cc.CustomerId), after, afterId)
	if err != nil {
		return err
	}
	return repos.ChatContext.UpdateUnread(ctx, cc.ChatId, cc.CustomerId, int(count), 0)
}

// RecomputeBoth 重算聊天双方的未读数
func RecomputeBoth(ctx context.Context, repos *mysql.Repositories, chat *model.Chat) error {
	contexts, err := repos.ChatContext.FindByChat(ctx, chat.Uuid)
	if err != nil {
		return err
	}
	for i := range contexts {
		if err := Recompute(ctx, repos, chat, &contexts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Aggregates 客户级别的未读数聚合
type Aggregates struct {
	ChatsUnread     int64
	SystemUnread    int64
	MarketingUnread int64
	TradesUnread    int64
}

// Collect 汇总客户的全部未读数
// 营销未读数 = 营销已读位置之后的可见营销消息数
func Collect(ctx context.Context, repos *mysql.Repositories, customerId string, marketingReadTime time.Time, now time.Time) (*Aggregates, error) {
	chats, err := repos.ChatContext.SumUnreadByStatuses(ctx, customerId, []string{chat_status_enum.ACTIVE, chat_status_enum.MARKETING})
	if err != nil {
		return nil, err
	}
	system, err := repos.ChatContext.SumUnreadByStatuses(ctx, customerId, []string{chat_status_enum.SYSTEM})
	if err != nil {
		return nil, err
	}
	marketing, err := repos.Marketing.CountVisibleAfter(ctx, now, marketingReadTime)
	if err != nil {
		return nil, err
	}
	trades, err := repos.TradeContext.SumUnreadByCustomer(ctx, customerId)
	if err != nil {
		return nil, err
	}
	return &Aggregates{
		ChatsUnread:     chats,
		SystemUnread:    system,
		MarketingUnread: marketing,
		TradesUnread:    trades,
	}, nil
}
