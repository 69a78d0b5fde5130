package services

import (
	"context"
	"encoding/json"

	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
	"go.uber.org/zap"
)

const (
	EventOrderPlaced    = "order.placed"
	EventUserRegistered = "user.registered"
)

// EventPublisher publishes domain events to SNS. Publishing is best effort:
// failures are logged and never fail the request that produced the event.
type EventPublisher struct {
	sns    aws_pkg.SNSPublisher
	logger *zap.Logger
}

func NewEventPublisher(sns aws_pkg.SNSPublisher, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{sns: sns, logger: logger}
}

func (p *EventPublisher) Publish(ctx context.Context, topicArn, eventType string, event interface{}) {
	if p == nil || p.sns == nil || topicArn == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal SNS event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := p.sns.Publish(ctx, topicArn, eventType, b); err != nil {
		p.logger.Error("Failed to publish SNS event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	p.logger.Debug("Published SNS event", zap.String("event_type", eventType), zap.String("topic", topicArn))
}
