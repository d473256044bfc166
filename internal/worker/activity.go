// Package worker runs the background jobs: the activity feed consumer and
// the scheduled tip digest.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// EventSource delivers bus events to a handler until ctx ends.
type EventSource interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// ActivityWorker turns bus events into activity feed entries.
type ActivityWorker struct {
	source EventSource
	store  ledger.ActivityStore
	logger *log.Logger
}

func NewActivityWorker(source EventSource, store ledger.ActivityStore, logger *log.Logger) *ActivityWorker {
	return &ActivityWorker{
		source: source,
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled or the source gives up.
func (w *ActivityWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Activity consumer started", log.FieldOperation, log.OpStartup)
	err := w.source.Consume(ctx, w.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle records one event. A returned error makes the broker redeliver.
func (w *ActivityWorker) Handle(ctx context.Context, e amqp.Event) error {
	if err := w.store.RecordActivity(ctx, services.ActivityFromEvent(e)); err != nil {
		return fmt.Errorf("record activity %s: %w", e.ID, err)
	}
	w.logger.DebugContext(ctx, "Activity recorded",
		log.FieldEventType, e.Type,
		log.FieldUserID, e.UserID,
		log.FieldOperation, log.OpConsume)
	return nil
}
