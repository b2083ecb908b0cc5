package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"

	"github.com/phrazzld/capture-worker/internal/config"
)

// maxFetchBytes caps a single image download. Captures are phone photos;
// anything larger indicates a bad URL.
const maxFetchBytes = 32 << 20

// BlobStore fetches image payloads over HTTP and deletes uploaded blobs
// from Cloud Storage after successful processing.
type BlobStore struct {
	logger     *slog.Logger
	bucket     string
	client     *storage.Client
	httpClient *http.Client
}

// NewBlobStore creates a BlobStore. The Cloud Storage client is only
// initialized when a bucket is configured; without one, Delete becomes a
// logged no-op so text- and url-only deployments need no GCP credentials.
func NewBlobStore(ctx context.Context, logger *slog.Logger, cfg config.BlobConfig) (*BlobStore, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &BlobStore{
		logger:     logger,
		bucket:     cfg.Bucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}

	if cfg.Bucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		s.client = client
	}

	return s, nil
}

// Fetch downloads the blob at url into memory. The caller owns the bytes
// and any temporary file it spools them to.
func (s *BlobStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch blob: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read blob body: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("fetch blob: payload exceeds %d bytes", maxFetchBytes)
	}

	return data, nil
}

// Delete removes the uploaded object at objectPath from the configured
// bucket. Deleting a missing object is not an error, so retries and
// already-cleaned items are safe.
func (s *BlobStore) Delete(ctx context.Context, objectPath string) error {
	if s.client == nil {
		s.logger.WarnContext(ctx, "no blob bucket configured, skipping delete",
			"object_path", objectPath)
		return nil
	}

	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete blob %s: %w", objectPath, err)
	}

	return nil
}

// Close releases the underlying Cloud Storage client, if any.
func (s *BlobStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
