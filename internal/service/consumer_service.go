package service

import (
	"context"

	"persuasive-dialogue-be/internal/pkg/logger"
	"persuasive-dialogue-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const auditModule = "Audit"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService copies every dialogue event into the audit log
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	audit     logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, audit logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		audit:     audit,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	// Malformed messages are acked so they are not redelivered forever
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.audit.Error(auditModule, "Unreadable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	switch event.EventType() {
	case events.TypeClassificationDegraded, events.TypeRetrievalLowConfidence, events.TypeSessionRepaired:
		cs.audit.Warn(auditModule, event.EventType(), details)
	case events.TypeRetrievalFailed:
		cs.audit.Error(auditModule, event.EventType(), details)
	default:
		cs.audit.Info(auditModule, event.EventType(), details)
	}
}
