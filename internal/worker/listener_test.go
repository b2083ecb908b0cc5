package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/store"
)

func listenerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func addedChange(item domain.CaptureItem) store.Change {
	return store.Change{Kind: store.ChangeAdded, Item: item}
}

// runListener starts Run in a goroutine and returns a channel carrying
// its result.
func runListener(t *testing.T, l *Listener, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return done
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop in time")
		return nil
	}
}

func TestRunProcessesAddedWaitingItems(t *testing.T) {
	first := waitingItem(domain.ContentTypeText, "first", domain.ModeStudy)
	second := waitingItem(domain.ContentTypeText, "second", domain.ModeStudy)

	queue := newFakeQueue()
	proc := &fakeProcessor{}
	l, err := NewListener(queue, proc, listenerLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runListener(t, l, ctx)

	queue.changes <- []store.Change{addedChange(first), addedChange(second)}
	close(queue.changes)

	err = waitErr(t, done)
	assert.ErrorIs(t, err, store.ErrSubscriptionClosed)
	cancel()

	// Items processed in observation order.
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, proc.ids())
}

func TestRunIgnoresNonAddedAndNonWaiting(t *testing.T) {
	added := waitingItem(domain.ContentTypeText, "fresh", domain.ModeStudy)

	claimed := waitingItem(domain.ContentTypeText, "claimed elsewhere", domain.ModeStudy)
	claimed.Status = domain.CaptureStatusProcessing

	modified := waitingItem(domain.ContentTypeText, "status update echo", domain.ModeStudy)

	queue := newFakeQueue()
	proc := &fakeProcessor{}
	l, err := NewListener(queue, proc, listenerLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runListener(t, l, ctx)

	queue.changes <- []store.Change{
		{Kind: store.ChangeModified, Item: modified},
		{Kind: store.ChangeRemoved, Item: modified},
		{Kind: store.ChangeAdded, Item: claimed},
		addedChange(added),
	}
	close(queue.changes)
	_ = waitErr(t, done)

	// Only the added, still-waiting item is handed to the processor.
	assert.Equal(t, []uuid.UUID{added.ID}, proc.ids())
}

func TestRunStopsOnFatalError(t *testing.T) {
	doomed := waitingItem(domain.ContentTypeText, "doomed", domain.ModeStudy)
	next := waitingItem(domain.ContentTypeText, "never reached", domain.ModeStudy)

	fatal := ErrFatalShutdown
	queue := newFakeQueue()
	proc := &fakeProcessor{errFor: map[uuid.UUID]error{doomed.ID: fatal}}
	l, err := NewListener(queue, proc, listenerLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runListener(t, l, ctx)

	queue.changes <- []store.Change{addedChange(doomed), addedChange(next)}

	err = waitErr(t, done)
	assert.ErrorIs(t, err, ErrFatalShutdown)

	// The fatal item is the last one processed; the batch remainder is
	// abandoned.
	assert.Equal(t, []uuid.UUID{doomed.ID}, proc.ids())
}

func TestRunReturnsNilOnCancel(t *testing.T) {
	queue := newFakeQueue()
	proc := &fakeProcessor{}
	l, err := NewListener(queue, proc, listenerLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runListener(t, l, ctx)

	cancel()
	assert.NoError(t, waitErr(t, done))
}

func TestRunSubscribeFailure(t *testing.T) {
	queue := &failingSubscribeQueue{err: errors.New("connection refused")}
	proc := &fakeProcessor{}
	l, err := NewListener(queue, proc, listenerLogger())
	require.NoError(t, err)

	err = l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to subscribe")
}

// failingSubscribeQueue is a QueueStore whose subscription cannot be
// established.
type failingSubscribeQueue struct {
	fakeQueue
	err error
}

func (q *failingSubscribeQueue) Subscribe(ctx context.Context) (<-chan []store.Change, error) {
	return nil, q.err
}
