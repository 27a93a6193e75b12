package service

import (
	"context"
	"encoding/json"
	"hrm_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	EventApplicationApplied   = "application.applied"
	EventApplicationApproved  = "application.approved"
	EventApplicationRejected  = "application.rejected"
	EventApplicationCancelled = "application.cancelled"
	EventApplicationCompleted = "application.completed"
	EventEnrollmentCreated    = "enrollment.created"
	EventEnrollmentRemoved    = "enrollment.removed"
	EventTrainingDeactivated  = "training.deactivated"
)

// Event is published after the transaction that produced it commits.
type Event struct {
	Type       string    `json:"type"`
	EntityID   uint      `json:"entity_id"`
	UserID     uint      `json:"user_id,omitempty"`
	EmployeeID uint      `json:"employee_id,omitempty"`
	At         time.Time `json:"at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}

// MultiPublisher hands every event to each publisher in order.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// RedisPublisher fans events out on a redis pub/sub channel. Failures are
// logged and never reach the caller.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{Client: client, Channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to encode event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.Client.Publish(ctx, p.Channel, payload).Err(); err != nil {
		logger.Log.Warn("Failed to publish event",
			zap.String("type", event.Type),
			zap.Uint("entity_id", event.EntityID),
			zap.Error(err))
	}
}
