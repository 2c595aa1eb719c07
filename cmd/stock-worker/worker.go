package main

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/outbox"
)

type stockHandler interface {
	Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
}

// Worker drains the stock subscription and applies each event to open carts.
type Worker struct {
	handler      stockHandler
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

func NewWorker(handler stockHandler, subscription *pubsub.Subscriber, logg *logger.Logger) (*Worker, error) {
	if handler == nil {
		return nil, errors.New("stock handler is required")
	}
	if subscription == nil {
		return nil, errors.New("stock subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{handler: handler, subscription: subscription, logg: logg}, nil
}

// Run processes stock events until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	return w.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if w.handleMessage(ctx, msg.ID, msg.Attributes, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// handleMessage returns true when the message should be acked. Malformed
// messages are acked so they don't redeliver forever; handler failures nack
// for retry.
func (w *Worker) handleMessage(ctx context.Context, messageID string, attributes map[string]string, data []byte) bool {
	eventType := enums.OutboxEventType(attributes["event_type"])
	logCtx := w.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		w.logg.Error(logCtx, "failed to decode event envelope", err)
		return true
	}

	if err := w.handler.Process(ctx, eventType, envelope); err != nil {
		w.logg.Error(logCtx, "failed to process stock event", err)
		return false
	}
	return true
}
