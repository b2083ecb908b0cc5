package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/capture-worker/internal/config"
)

const userAgent = "capture-worker/0.1.0"

// Priority controls how prominently a push notification is delivered.
type Priority string

// Notification priorities. Urgent is reserved for fatal conditions that
// halt the worker.
const (
	PriorityDefault Priority = ""
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
)

// Message is a single titled push notification.
type Message struct {
	Title    string
	Body     string
	Priority Priority
}

// Notifier defines the notification surface exposed to the worker.
// Delivery is fire-and-forget to a single broadcast topic; callers treat
// Send errors as log-only and never let them change an item's outcome.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NewNotifier builds a notifier backed by ntfy when a topic URL is
// configured. When no topic is configured, a noop implementation is
// returned so callers never need to nil-check.
func NewNotifier(cfg config.NotifyConfig) Notifier {
	topic := strings.TrimSpace(cfg.TopicURL)
	if topic == "" {
		return noopNotifier{}
	}

	return &ntfyNotifier{
		endpoint: topic,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type ntfyNotifier struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyNotifier) Send(ctx context.Context, msg Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.Title != "" {
		req.Header.Set("Title", msg.Title)
	}
	if msg.Priority != PriorityDefault {
		req.Header.Set("Priority", string(msg.Priority))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, Message) error { return nil }
