// Package eventbus 发布领域变更事件
// 核心只负责发布，广播与推送由外部通知层消费完成
// messageMode 为 "kafka" 时写入 Kafka，为 "channel" 时走进程内通道（本地开发用）
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"trade_chat_server/internal/config"
	"trade_chat_server/pkg/constants"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 事件类型
const (
	EventMessageCreated   = "message.created"   // 新消息写入
	EventMessageStatus    = "message.status"    // 消息状态变更（投递/已读/编辑/隐藏）
	EventChatContext      = "chat.context"      // 聊天上下文变更（未读数/状态/活跃时间）
	EventMarketingCreated = "marketing.created" // 新营销消息
)

// Event 变更事件
// Key 用于 Kafka 分区路由，同一聊天的事件落在同一分区保序
type Event struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	CustomerId string          `json:"customer_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Publisher 事件发布接口
// at-least-once 语义，发布失败只记录日志不阻断业务
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ==================== Kafka 实现 ====================

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher 创建 Kafka 事件发布器
func NewKafkaPublisher(conf *config.KafkaConfig) Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.EventTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           conf.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// ==================== 进程内通道实现 ====================

type channelPublisher struct {
	ch chan Event
}

// NewChannelPublisher 创建进程内事件发布器
// 本地开发与测试用，消费端通过 Events() 读取
func NewChannelPublisher() *channelPublisher {
	return &channelPublisher{ch: make(chan Event, constants.CHANNEL_SIZE)}
}

func (p *channelPublisher) Publish(ctx context.Context, event Event) error {
	select {
	case p.ch <- event:
	default:
		// 通道满时丢弃最旧语义不可取，直接告警并丢弃本条
		zap.L().Warn("event channel full, dropping event", zap.String("type", event.Type))
	}
	return nil
}

func (p *channelPublisher) Close() error {
	close(p.ch)
	return nil
}

// Events 返回事件读取通道
func (p *channelPublisher) Events() <-chan Event {
	return p.ch
}

// ==================== 构造入口 ====================

// NewPublisher 按配置选择事件发布实现
func NewPublisher(conf *config.KafkaConfig) Publisher {
	if conf.MessageMode == "kafka" {
		return NewKafkaPublisher(conf)
	}
	return NewChannelPublisher()
}

// FireAndForget 发布事件，失败只记录日志
// 业务事务已提交，事件发布失败不回滚
func FireAndForget(pub Publisher, ctx context.Context, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		zap.L().Error("publish event failed",
			zap.String("type", event.Type),
			zap.String("key", event.Key),
			zap.Error(err))
	}
}
