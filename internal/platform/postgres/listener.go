package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/phrazzld/capture-worker/internal/store"
)

// notifyChannel is the Postgres NOTIFY channel the capture_queue trigger
// publishes to. It must match the channel name in the migration.
const notifyChannel = "capture_queue_changes"

// notifyPayload is the JSON body emitted by the capture_queue trigger.
type notifyPayload struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// Subscribe establishes a standing subscription to queue changes.
//
// A dedicated pgx connection LISTENs on the trigger channel. The first
// batch delivered carries every item already waiting when the
// subscription was established; after that, each notification is
// translated into a single-change batch. The channel is closed when ctx
// is cancelled or the connection fails.
func (s *QueueStore) Subscribe(ctx context.Context) (<-chan []store.Change, error) {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	// Snapshot the backlog after LISTEN is active so an insert arriving
	// in between is seen either in the snapshot or as a notification,
	// never dropped. Seeing it twice is fine: the second observation
	// finds a non-waiting snapshot and is ignored downstream.
	backlog, err := s.waitingItems(ctx)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	changes := make(chan []store.Change)

	go func() {
		defer close(changes)
		defer func() { _ = conn.Close(context.Background()) }()

		if len(backlog) > 0 {
			batch := make([]store.Change, 0, len(backlog))
			for _, item := range backlog {
				batch = append(batch, store.Change{Kind: store.ChangeAdded, Item: item})
			}
			s.logger.Info("delivering queue backlog", "count", len(batch))
			if !send(ctx, changes, batch) {
				return
			}
		}

		for {
			notification, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("queue notification wait failed", "error", err)
				}
				return
			}

			change, ok := s.translate(ctx, notification.Payload)
			if !ok {
				continue
			}

			if !send(ctx, changes, []store.Change{change}) {
				return
			}
		}
	}()

	return changes, nil
}

// translate decodes a trigger payload into a Change, re-fetching the row
// snapshot for added and modified events. Returns ok=false for payloads
// that should be skipped (malformed, or the row vanished in between).
func (s *QueueStore) translate(ctx context.Context, payload string) (store.Change, bool) {
	var decoded notifyPayload
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		s.logger.Warn("ignoring malformed queue notification",
			"payload", payload,
			"error", err)
		return store.Change{}, false
	}

	kind, ok := changeKind(decoded.Kind)
	if !ok {
		s.logger.Warn("ignoring queue notification with unknown kind",
			"kind", decoded.Kind,
			"id", decoded.ID)
		return store.Change{}, false
	}

	change := store.Change{Kind: kind}
	change.Item.ID = decoded.ID

	if kind == store.ChangeRemoved {
		return change, true
	}

	item, err := s.getItem(ctx, decoded.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Row deleted between the notification and the fetch.
			return store.Change{}, false
		}
		s.logger.Error("failed to fetch notified queue item",
			"id", decoded.ID,
			"error", err)
		return store.Change{}, false
	}
	change.Item = *item

	return change, true
}

func changeKind(raw string) (store.ChangeKind, bool) {
	switch store.ChangeKind(raw) {
	case store.ChangeAdded, store.ChangeModified, store.ChangeRemoved:
		return store.ChangeKind(raw), true
	default:
		return "", false
	}
}

func send(ctx context.Context, out chan<- []store.Change, batch []store.Change) bool {
	select {
	case out <- batch:
		return true
	case <-ctx.Done():
		return false
	}
}
