package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/common/mq"
	appErr "lcbridge/pkg/errors"
	"lcbridge/pkg/utils/logger"

	"go.uber.org/zap"
)

const runEventType = "submission.run"

// RunEventPublisher publishes submission run events for async consumers.
type RunEventPublisher interface {
	PublishRun(ctx context.Context, event model.RunEvent) error
}

// MQRunEventPublisher publishes run events to a message queue.
type MQRunEventPublisher struct {
	producer mq.Producer
	topic    string
}

// NewMQRunEventPublisher creates a new MQ run event publisher.
func NewMQRunEventPublisher(producer mq.Producer, topic string) *MQRunEventPublisher {
	return &MQRunEventPublisher{producer: producer, topic: topic}
}

// PublishRun publishes one run event keyed by its event id.
func (p *MQRunEventPublisher) PublishRun(ctx context.Context, event model.RunEvent) error {
	if p == nil || p.producer == nil {
		return appErr.New(appErr.ServiceUnavailable).WithMessage("run event publisher is not configured")
	}
	if p.topic == "" {
		return appErr.New(appErr.InvalidParams).WithMessage("run event topic is required")
	}
	if event.EventID == "" {
		return appErr.ValidationError("event_id", "required")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal run event failed: %w", err)
	}
	message := mq.NewMessage(event.EventID, payload).
		WithHeader("event", runEventType).
		WithHeader("slug", event.Slug)
	if err := p.producer.Publish(ctx, p.topic, message); err != nil {
		logger.Warn(ctx, "publish run event failed", zap.String("event_id", event.EventID), zap.Error(err))
		return appErr.Wrapf(err, appErr.ServiceUnavailable, "publish run event failed")
	}
	return nil
}
