package services

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// Publisher receives an event after every successful write.
type Publisher interface {
	Publish(ctx context.Context, e amqp.Event) error
}

// ActivityFromEvent maps a bus event to a feed entry.
func ActivityFromEvent(e amqp.Event) core.Activity {
	return core.Activity{
		ID:         e.ID,
		UserID:     e.UserID,
		Kind:       string(e.Type),
		Reference:  e.Reference,
		Amount:     e.Amount,
		OccurredAt: e.OccurredAt,
	}
}

// DirectPublisher records activity in-process. It is used when no broker is
// configured, so the feed still fills without a worker.
type DirectPublisher struct {
	store ledger.ActivityStore
}

func NewDirectPublisher(store ledger.ActivityStore) *DirectPublisher {
	return &DirectPublisher{store: store}
}

func (p *DirectPublisher) Publish(ctx context.Context, e amqp.Event) error {
	if err := p.store.RecordActivity(ctx, ActivityFromEvent(e)); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// publish never fails the caller: the write already succeeded.
func publish(ctx context.Context, p Publisher, logger *log.Logger, e amqp.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event",
			log.FieldError, err,
			log.FieldEventType, e.Type,
			log.FieldUserID, e.UserID,
			log.FieldOperation, log.OpPublish)
	}
}
