package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/generation"
	"github.com/phrazzld/capture-worker/internal/notify"
	"github.com/phrazzld/capture-worker/internal/store"
)

// placeholderTitle substitutes for notes whose generated document yields
// no usable first line.
const placeholderTitle = "Untitled Note"

// imagePromptContext is the fixed input context sent to the generator for
// image captures; the image itself travels as a binary attachment.
const imagePromptContext = "User uploaded an image."

// errPreviewLength bounds the failure description included in a
// notification body.
const errPreviewLength = 100

// BlobStore defines the blob operations the processor needs: downloading
// an image payload and deleting the uploaded object after processing.
type BlobStore interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, objectPath string) error
}

// Archiver persists a generated note and returns its location.
type Archiver interface {
	Write(title, body string) (string, error)
}

// Timeouts bounds the processor's external calls so a stalled collaborator
// cannot block the pipeline indefinitely.
type Timeouts struct {
	Fetch    time.Duration
	Generate time.Duration
	Store    time.Duration
}

// Common construction errors
var (
	ErrNilQueueStore = errors.New("queue store cannot be nil")
	ErrNilGenerator  = errors.New("generator cannot be nil")
	ErrNilBlobStore  = errors.New("blob store cannot be nil")
	ErrNilArchiver   = errors.New("archiver cannot be nil")
	ErrNilNotifier   = errors.New("notifier cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
)

// Processor owns the per-item workflow: claim, dispatch by content type,
// generate, persist, notify, clean up, delete. Exactly one Process call
// runs at a time; the dispatch loop hands items over synchronously.
type Processor struct {
	queue     store.QueueStore
	generator generation.Generator
	blobs     BlobStore
	archive   Archiver
	notifier  notify.Notifier
	logger    *slog.Logger
	spoolDir  string
	timeouts  Timeouts

	// now is overridable in tests.
	now func() time.Time
}

// NewProcessor creates a Processor with the provided dependencies.
// spoolDir holds temporary image downloads; empty means the OS temp dir.
func NewProcessor(
	queue store.QueueStore,
	generator generation.Generator,
	blobs BlobStore,
	archive Archiver,
	notifier notify.Notifier,
	logger *slog.Logger,
	spoolDir string,
	timeouts Timeouts,
) (*Processor, error) {
	if queue == nil {
		return nil, ErrNilQueueStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if blobs == nil {
		return nil, ErrNilBlobStore
	}
	if archive == nil {
		return nil, ErrNilArchiver
	}
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	// Apply default bounds when unset so a zero value can never produce
	// an already-expired context.
	if timeouts.Fetch <= 0 {
		timeouts.Fetch = 30 * time.Second
	}
	if timeouts.Generate <= 0 {
		timeouts.Generate = 3 * time.Minute
	}
	if timeouts.Store <= 0 {
		timeouts.Store = 10 * time.Second
	}

	return &Processor{
		queue:     queue,
		generator: generator,
		blobs:     blobs,
		archive:   archive,
		notifier:  notifier,
		logger:    logger,
		spoolDir:  spoolDir,
		timeouts:  timeouts,
		now:       time.Now,
	}, nil
}

// outcome carries the results of the generate-and-archive steps. tempImage
// is populated as soon as the spool file exists so cleanup covers every
// exit path.
type outcome struct {
	title       string
	archivePath string
	tempImage   string
}

// Process drives a capture item to a terminal state: deleted on success,
// error status on recoverable failure. The returned error is non-nil only
// for fatal failures and wraps ErrFatalShutdown.
func (p *Processor) Process(ctx context.Context, item domain.CaptureItem) error {
	logger := p.logger.With(
		"item_id", item.ID,
		"content_type", item.ContentType,
		"mode", item.Mode,
	)

	// Claim immediately, before any external call, to minimize the window
	// in which a duplicate added event could cause double-processing.
	if err := p.markProcessing(ctx, item.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("item vanished before claim, skipping")
			return nil
		}
		logger.Error("failed to claim item", "error", err)
		return nil
	}

	logger.Info("processing capture")

	out, procErr := p.execute(ctx, item)
	defer p.removeTempImage(logger, out.tempImage)

	if procErr != nil {
		return p.fail(ctx, logger, item, procErr)
	}

	logger.Info("note archived",
		"title", out.title,
		"path", out.archivePath)

	p.send(ctx, logger, notify.Message{
		Title: "Capture saved",
		Body:  fmt.Sprintf("%s\nYour note is safely archived.", out.title),
	})

	// Best-effort cleanup of the uploaded blob; failure never reverts the
	// successful outcome.
	if item.ContentType == domain.ContentTypeImage && item.StoragePath != "" {
		if err := p.blobs.Delete(ctx, item.StoragePath); err != nil {
			logger.Warn("blob delete failed, object may need manual cleanup",
				"storage_path", item.StoragePath,
				"error", err)
		}
	}

	// Deleting the queue item is the sole terminal-success signal.
	deleteCtx, cancel := context.WithTimeout(ctx, p.timeouts.Store)
	defer cancel()
	if err := p.queue.Delete(deleteCtx, item.ID); err != nil {
		logger.Error("failed to delete completed queue item", "error", err)
	}

	return nil
}

// execute runs the failable middle of the workflow: payload preparation,
// generation, title extraction, and archiving.
func (p *Processor) execute(ctx context.Context, item domain.CaptureItem) (outcome, error) {
	var out outcome

	payload := item.Content
	var imageData []byte

	if item.ContentType == domain.ContentTypeImage {
		fetchCtx, cancel := context.WithTimeout(ctx, p.timeouts.Fetch)
		defer cancel()

		data, err := p.blobs.Fetch(fetchCtx, item.Content)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		imageData = data

		tempPath, err := p.spoolImage(data)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		out.tempImage = tempPath
		payload = imagePromptContext
	}

	generateCtx, cancel := context.WithTimeout(ctx, p.timeouts.Generate)
	defer cancel()

	document, err := p.generator.GenerateNote(generateCtx, generation.Request{
		ContentType: item.ContentType,
		Content:     payload,
		ImageData:   imageData,
		Mode:        item.Mode,
		CapturedAt:  p.now(),
	})
	if err != nil {
		return out, err
	}

	out.title = ExtractTitle(document)

	path, err := p.archive.Write(out.title, document)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	out.archivePath = path

	return out, nil
}

// fail records a recoverable failure on the item and notifies the
// operator. Fatal failures additionally trigger an urgent notification
// and return a shutdown error to the dispatch loop.
func (p *Processor) fail(ctx context.Context, logger *slog.Logger, item domain.CaptureItem, procErr error) error {
	logger.Error("capture processing failed", "error", procErr)

	markCtx, cancel := context.WithTimeout(ctx, p.timeouts.Store)
	defer cancel()
	if err := p.queue.MarkError(markCtx, item.ID, procErr.Error(), p.now()); err != nil {
		logger.Error("failed to mark item errored", "error", err)
	}

	p.send(ctx, logger, notify.Message{
		Title:    "Capture processing failed",
		Body:     errorPreview(procErr),
		Priority: notify.PriorityHigh,
	})

	if !IsFatal(procErr) {
		return nil
	}

	logger.Error("fatal error detected, shutting down for maintenance")
	p.send(ctx, logger, notify.Message{
		Title:    "Capture worker halted",
		Body:     fmt.Sprintf("Fatal error: %s\nOperator intervention required.", errorPreview(procErr)),
		Priority: notify.PriorityUrgent,
	})

	return fmt.Errorf("%w: %v", ErrFatalShutdown, procErr)
}

// markProcessing claims the item with a bounded store call.
func (p *Processor) markProcessing(ctx context.Context, id uuid.UUID) error {
	claimCtx, cancel := context.WithTimeout(ctx, p.timeouts.Store)
	defer cancel()
	return p.queue.MarkProcessing(claimCtx, id)
}

// spoolImage writes downloaded image bytes to a temporary file owned by
// this Process invocation.
func (p *Processor) spoolImage(data []byte) (string, error) {
	f, err := os.CreateTemp(p.spoolDir, "capture-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write spool file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close spool file: %w", err)
	}

	return f.Name(), nil
}

// removeTempImage releases the spool file on every exit path. A missing
// file is fine; anything else is logged as a cleanup warning.
func (p *Processor) removeTempImage(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove temp image", "path", path, "error", err)
	}
}

// send delivers a notification, logging delivery failures without ever
// escalating them.
func (p *Processor) send(ctx context.Context, logger *slog.Logger, msg notify.Message) {
	if err := p.notifier.Send(ctx, msg); err != nil {
		logger.Warn("notification delivery failed",
			"notification_title", msg.Title,
			"error", err)
	}
}

// ExtractTitle derives a note title from a generated document: the first
// line with heading markup stripped and whitespace trimmed. A non-heading
// first line is used verbatim. Empty results get a fixed placeholder.
func ExtractTitle(document string) string {
	firstLine, _, _ := strings.Cut(document, "\n")
	title := strings.TrimSpace(strings.ReplaceAll(firstLine, "#", ""))
	if title == "" {
		return placeholderTitle
	}
	return title
}

// errorPreview truncates a failure description for a notification body.
func errorPreview(err error) string {
	msg := err.Error()
	runes := []rune(msg)
	if len(runes) <= errPreviewLength {
		return msg
	}
	return string(runes[:errPreviewLength]) + "..."
}
