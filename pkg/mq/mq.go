package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"academia/backend/config"
)

// 领域事件路由键
const (
	EventInviteGenerated  = "invite.generated"
	EventStudentsPromoted = "students.promoted"
)

// Envelope 事件统一外层结构
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// NewEnvelope 序列化 payload 并生成事件 ID
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// New 未配置 URL 时返回 NopPublisher
func New(cfg *config.MQConfig, logger *zap.Logger) (Publisher, error) {
	if cfg.URL == "" {
		logger.Info("未配置消息队列，领域事件将被丢弃")
		return NopPublisher{}, nil
	}
	p, err := NewRabbitMQPublisher(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))
	return p, nil
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }
