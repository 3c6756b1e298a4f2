package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// EventPublisher announces committed ledger mutations. *amqp.Client
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// emit publishes after commit. A failure is logged and never reaches the
// caller: the mutation is already durable.
func emit(ctx context.Context, pub EventPublisher, logger *log.Logger, event *amqp.LedgerEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, event.Type,
			"entity_id", event.EntityID,
			log.FieldError, err)
	}
}
