package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/store"
)

// ItemProcessor drives a single capture item to a terminal state. A
// non-nil error is a fatal shutdown signal, not an item failure.
type ItemProcessor interface {
	Process(ctx context.Context, item domain.CaptureItem) error
}

// Listener subscribes to the queue store and hands newly added waiting
// items to the processor one at a time, in observation order. Bounding
// concurrency at one in-flight item avoids any cross-item locking.
type Listener struct {
	queue     store.QueueStore
	processor ItemProcessor
	logger    *slog.Logger
}

// NewListener creates a Listener with the provided dependencies.
func NewListener(queue store.QueueStore, processor ItemProcessor, logger *slog.Logger) (*Listener, error) {
	if queue == nil {
		return nil, ErrNilQueueStore
	}
	if processor == nil {
		return nil, errors.New("processor cannot be nil")
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Listener{
		queue:     queue,
		processor: processor,
		logger:    logger,
	}, nil
}

// Run consumes the queue subscription until ctx is cancelled (returns
// nil), the subscription terminates unexpectedly (returns
// store.ErrSubscriptionClosed), or the processor reports a fatal error
// (returned as-is so main can exit non-zero after final logging).
//
// Only added events whose snapshot is still waiting are acted on.
// Modified and removed events, including the ones caused by this worker's
// own status updates, are ignored to prevent reentrant processing.
func (l *Listener) Run(ctx context.Context) error {
	changes, err := l.queue.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to queue: %w", err)
	}

	l.logger.Info("listening for captures")

	for {
		select {
		case <-ctx.Done():
			return nil

		case batch, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return store.ErrSubscriptionClosed
			}

			for _, change := range batch {
				if change.Kind != store.ChangeAdded {
					continue
				}
				if change.Item.Status != domain.CaptureStatusWaiting {
					continue
				}

				l.logger.Info("capture detected",
					"item_id", change.Item.ID,
					"content_type", change.Item.ContentType)

				// Synchronous: the next event waits until this item
				// reaches a terminal state.
				if err := l.processor.Process(ctx, change.Item); err != nil {
					return err
				}
			}
		}
	}
}
