package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/capture-worker/internal/domain"
)

// ChangeKind tags a queue change event with how the item changed.
type ChangeKind string

// Possible change kinds delivered by a subscription.
const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// Change is a single queue change event paired with a snapshot of the
// affected item. For ChangeRemoved the snapshot carries only the ID.
type Change struct {
	Kind ChangeKind
	Item domain.CaptureItem
}

// QueueStore defines the queue persistence contract consumed by the worker.
// Implementations must deliver newly inserted waiting items in real time
// and must include items that were already waiting when the subscription
// was established, so a restarted worker picks up backlog.
type QueueStore interface {
	// Subscribe establishes a standing subscription to queue changes.
	// The returned channel yields batches of changes in observation order
	// and is closed when ctx is cancelled or the subscription fails.
	Subscribe(ctx context.Context) (<-chan []Change, error)

	// MarkProcessing transitions an item to the processing status. This is
	// the claim step and must happen before any long-running work begins.
	MarkProcessing(ctx context.Context, id uuid.UUID) error

	// MarkError transitions an item to the error terminal status, recording
	// the failure description and processing time for operator inspection.
	MarkError(ctx context.Context, id uuid.UUID, errorMsg string, processedAt time.Time) error

	// Delete removes an item from the queue. Deletion is the sole terminal
	// success signal; absence of the item means done.
	Delete(ctx context.Context, id uuid.UUID) error
}
