package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CaptureStatus represents the processing state of a capture queue item.
type CaptureStatus string

// Possible capture status values. There is no "done" status: a
// successfully processed item is deleted from the queue, so absence is
// the terminal success state.
const (
	CaptureStatusWaiting    CaptureStatus = "waiting"
	CaptureStatusProcessing CaptureStatus = "processing"
	CaptureStatusError      CaptureStatus = "error"
)

// ContentType identifies what kind of payload a capture carries.
type ContentType string

// Possible content type values
const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeURL   ContentType = "url"
)

// Mode selects the generation prompt style for a capture.
type Mode string

// Possible generation modes
const (
	ModeStudy   Mode = "study"
	ModeTech    Mode = "tech"
	ModeIdea    Mode = "idea"
	ModeEconomy Mode = "economy"
	ModeGeneral Mode = "general"
)

// Common validation errors for CaptureItem
var (
	ErrEmptyCaptureID       = errors.New("capture ID cannot be empty")
	ErrEmptyCaptureContent  = errors.New("capture content cannot be empty")
	ErrInvalidCaptureStatus = errors.New("invalid capture status")
	ErrInvalidContentType   = errors.New("invalid content type")
)

// CaptureItem is a single capture event awaiting transformation into an
// archived note. Items are created by an external producer with status
// waiting; this worker drives them to a terminal state.
type CaptureItem struct {
	ID          uuid.UUID     `json:"id"`
	Status      CaptureStatus `json:"status"`
	ContentType ContentType   `json:"content_type"`

	// Content is the payload, keyed by ContentType: inline text for text
	// captures, the image download URL for image captures, or the target
	// URL for url captures.
	Content string `json:"content"`

	// Mode selects the generation prompt. Defaults to study when the
	// producer omits it or sends an unrecognized value.
	Mode Mode `json:"mode"`

	// StoragePath identifies the uploaded blob to delete after an image
	// capture is processed. Empty for other content types.
	StoragePath string `json:"storage_path,omitempty"`

	// ErrorMsg and ProcessedAt are set only when Status becomes error.
	ErrorMsg    string     `json:"error_msg,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCaptureItem creates a waiting capture with a fresh ID.
// Returns an error if validation fails.
func NewCaptureItem(contentType ContentType, content string, mode Mode) (*CaptureItem, error) {
	item := &CaptureItem{
		ID:          uuid.New(),
		Status:      CaptureStatusWaiting,
		ContentType: contentType,
		Content:     content,
		Mode:        ParseMode(string(mode)),
		CreatedAt:   time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the CaptureItem has valid data.
// Returns an error if any field fails validation.
func (c *CaptureItem) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCaptureID
	}

	if !isValidCaptureStatus(c.Status) {
		return ErrInvalidCaptureStatus
	}

	if !isValidContentType(c.ContentType) {
		return ErrInvalidContentType
	}

	if c.Content == "" {
		return ErrEmptyCaptureContent
	}

	return nil
}

// ParseMode maps a raw mode string to a known Mode, falling back to study
// for empty or unrecognized values.
func ParseMode(raw string) Mode {
	switch Mode(raw) {
	case ModeStudy, ModeTech, ModeIdea, ModeEconomy, ModeGeneral:
		return Mode(raw)
	default:
		return ModeStudy
	}
}

func isValidCaptureStatus(status CaptureStatus) bool {
	switch status {
	case CaptureStatusWaiting, CaptureStatusProcessing, CaptureStatusError:
		return true
	default:
		return false
	}
}

func isValidContentType(ct ContentType) bool {
	switch ct {
	case ContentTypeText, ContentTypeImage, ContentTypeURL:
		return true
	default:
		return false
	}
}
