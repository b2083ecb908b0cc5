package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/generation"
	"github.com/phrazzld/capture-worker/internal/notify"
	"github.com/phrazzld/capture-worker/internal/store"
)

// fakeQueue implements store.QueueStore with an in-memory item map and a
// recorded operation log.
type fakeQueue struct {
	mu      sync.Mutex
	items   map[uuid.UUID]domain.CaptureItem
	changes chan []store.Change

	markProcessingErr error
	markErrorErr      error
	deleteErr         error

	ops []string
}

func newFakeQueue(items ...domain.CaptureItem) *fakeQueue {
	q := &fakeQueue{
		items:   make(map[uuid.UUID]domain.CaptureItem),
		changes: make(chan []store.Change, 16),
	}
	for _, item := range items {
		q.items[item.ID] = item
	}
	return q
}

func (q *fakeQueue) Subscribe(ctx context.Context) (<-chan []store.Change, error) {
	return q.changes, nil
}

func (q *fakeQueue) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, "mark_processing")
	if q.markProcessingErr != nil {
		return q.markProcessingErr
	}
	item, ok := q.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	item.Status = domain.CaptureStatusProcessing
	q.items[id] = item
	return nil
}

func (q *fakeQueue) MarkError(ctx context.Context, id uuid.UUID, errorMsg string, processedAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, "mark_error")
	if q.markErrorErr != nil {
		return q.markErrorErr
	}
	item, ok := q.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	item.Status = domain.CaptureStatusError
	item.ErrorMsg = errorMsg
	item.ProcessedAt = &processedAt
	q.items[id] = item
	return nil
}

func (q *fakeQueue) Delete(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, "delete")
	if q.deleteErr != nil {
		return q.deleteErr
	}
	delete(q.items, id)
	return nil
}

func (q *fakeQueue) get(id uuid.UUID) (domain.CaptureItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.items[id]
	return item, ok
}

// fakeGenerator implements generation.Generator, recording requests and
// optionally observing queue state at call time.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []generation.Request
	document string
	err      error
	onCall   func()
}

func (g *fakeGenerator) GenerateNote(ctx context.Context, req generation.Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return "", g.err
	}
	return g.document, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// fakeBlobs implements the BlobStore interface.
type fakeBlobs struct {
	fetchData []byte
	fetchErr  error
	deleteErr error

	fetched []string
	deleted []string
}

func (b *fakeBlobs) Fetch(ctx context.Context, url string) ([]byte, error) {
	b.fetched = append(b.fetched, url)
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return b.fetchData, nil
}

func (b *fakeBlobs) Delete(ctx context.Context, objectPath string) error {
	b.deleted = append(b.deleted, objectPath)
	return b.deleteErr
}

// fakeArchive implements the Archiver interface.
type fakeArchive struct {
	err    error
	titles []string
	bodies []string
}

func (a *fakeArchive) Write(title, body string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.titles = append(a.titles, title)
	a.bodies = append(a.bodies, body)
	return "/vault/Inbox/" + title + ".md", nil
}

// fakeNotifier implements notify.Notifier.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (n *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *fakeNotifier) sent() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.messages...)
}

// fakeProcessor implements ItemProcessor for listener tests.
type fakeProcessor struct {
	mu        sync.Mutex
	processed []uuid.UUID
	errFor    map[uuid.UUID]error
}

func (p *fakeProcessor) Process(ctx context.Context, item domain.CaptureItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, item.ID)
	if p.errFor != nil {
		return p.errFor[item.ID]
	}
	return nil
}

func (p *fakeProcessor) ids() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.processed...)
}
