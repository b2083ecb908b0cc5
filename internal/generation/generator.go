package generation

import (
	"context"
	"time"

	"github.com/phrazzld/capture-worker/internal/domain"
)

// Request carries everything the generator needs to produce a note for a
// single capture.
type Request struct {
	// ContentType selects how Content is interpreted.
	ContentType domain.ContentType

	// Content is the capture payload: inline text, the fixed image context
	// line for image captures, or the target URL for url captures.
	Content string

	// ImageData holds the downloaded image bytes for image captures,
	// attached to the prompt as binary content. Nil otherwise.
	ImageData []byte

	// Mode selects the prompt template.
	Mode domain.Mode

	// CapturedAt is interpolated into the prompt as the capture timestamp.
	CapturedAt time.Time
}

// Generator defines the interface for turning a capture into a Markdown
// note. This interface is the boundary between the worker core and the
// external AI service, allowing substitution with fakes in tests.
type Generator interface {
	// GenerateNote produces the full Markdown document for the capture.
	// The document is expected to start with a top-level heading, though
	// that is not enforced here. Returns an error wrapping one of the
	// sentinels in errors.go when generation fails or yields a blank
	// document.
	GenerateNote(ctx context.Context, req Request) (string, error)
}
