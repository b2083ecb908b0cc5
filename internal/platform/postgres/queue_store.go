package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/store"
)

// QueueStore implements the store.QueueStore interface using PostgreSQL.
// Row access goes through database/sql with the pgx driver; the real-time
// subscription uses a dedicated pgx connection, see listener.go.
type QueueStore struct {
	db         store.DBTX
	connString string
	logger     *slog.Logger
}

// NewQueueStore creates a QueueStore. connString is used to open the
// dedicated LISTEN connection when Subscribe is called.
func NewQueueStore(db store.DBTX, connString string, logger *slog.Logger) *QueueStore {
	return &QueueStore{
		db:         db,
		connString: connString,
		logger:     logger,
	}
}

// MarkProcessing transitions an item to the processing status. This is the
// claim step: it runs before any external call so a duplicate added event
// for the same item sees a non-waiting snapshot.
func (s *QueueStore) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE capture_queue
		SET status = $1
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, domain.CaptureStatusProcessing, id)
	if err != nil {
		return fmt.Errorf("failed to mark item processing: %w", err)
	}

	return s.requireRow(result, id)
}

// MarkError transitions an item to the error terminal status, recording
// the failure description and processing time for operator inspection.
func (s *QueueStore) MarkError(ctx context.Context, id uuid.UUID, errorMsg string, processedAt time.Time) error {
	query := `
		UPDATE capture_queue
		SET status = $1, error_msg = $2, processed_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.CaptureStatusError,
		errorMsg,
		processedAt.UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark item errored: %w", err)
	}

	return s.requireRow(result, id)
}

// Delete removes an item from the queue. Absence of the item is the
// terminal success state, so deleting a missing row is not an error.
func (s *QueueStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM capture_queue WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete queue item: %w", err)
	}

	return nil
}

// requireRow maps a zero-row update to store.ErrNotFound.
func (s *QueueStore) requireRow(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	return nil
}

// getItem fetches a single queue item snapshot by ID.
func (s *QueueStore) getItem(ctx context.Context, id uuid.UUID) (*domain.CaptureItem, error) {
	query := `
		SELECT id, status, content_type, content, mode, storage_path, error_msg, processed_at, created_at
		FROM capture_queue
		WHERE id = $1
	`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}

	return item, nil
}

// waitingItems returns all items currently waiting, in creation order.
// These seed the initial subscription batch so a restarted worker drains
// backlog before reacting to new inserts.
func (s *QueueStore) waitingItems(ctx context.Context) ([]domain.CaptureItem, error) {
	query := `
		SELECT id, status, content_type, content, mode, storage_path, error_msg, processed_at, created_at
		FROM capture_queue
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.CaptureStatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to query waiting items: %w", err)
	}
	defer rows.Close()

	var items []domain.CaptureItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue item rows: %w", err)
	}

	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.CaptureItem, error) {
	var (
		item        domain.CaptureItem
		storagePath sql.NullString
		errorMsg    sql.NullString
		processedAt sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.Status,
		&item.ContentType,
		&item.Content,
		&item.Mode,
		&storagePath,
		&errorMsg,
		&processedAt,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.StoragePath = storagePath.String
	item.ErrorMsg = errorMsg.String
	if processedAt.Valid {
		t := processedAt.Time
		item.ProcessedAt = &t
	}

	return &item, nil
}
