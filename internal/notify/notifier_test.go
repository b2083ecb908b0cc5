package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/capture-worker/internal/config"
)

func TestSendSetsHeadersAndBody(t *testing.T) {
	var gotTitle, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(config.NotifyConfig{TopicURL: server.URL})
	err := n.Send(context.Background(), Message{
		Title:    "Saved to archive",
		Body:     "My Notes",
		Priority: PriorityHigh,
	})
	require.NoError(t, err)

	assert.Equal(t, "Saved to archive", gotTitle)
	assert.Equal(t, "high", gotPriority)
	assert.Equal(t, "My Notes", gotBody)
}

func TestSendOmitsDefaultPriority(t *testing.T) {
	var hasPriority bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasPriority = r.Header["Priority"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(config.NotifyConfig{TopicURL: server.URL})
	require.NoError(t, n.Send(context.Background(), Message{Title: "t", Body: "b"}))
	assert.False(t, hasPriority)
}

func TestSendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := NewNotifier(config.NotifyConfig{TopicURL: server.URL})
	err := n.Send(context.Background(), Message{Title: "t", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewNotifierWithoutTopicIsNoop(t *testing.T) {
	n := NewNotifier(config.NotifyConfig{})
	assert.NoError(t, n.Send(context.Background(), Message{Title: "t", Body: "b"}))
}
