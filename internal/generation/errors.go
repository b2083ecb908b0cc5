package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when note generation fails for any
	// general upstream reason.
	ErrGenerationFailed = errors.New("failed to generate note from capture")

	// ErrEmptyDocument is returned when the model responds successfully
	// but the document is empty or blank.
	ErrEmptyDocument = errors.New("empty document from language model")

	// ErrContentBlocked is returned when the model blocks the content due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is
	// invalid. This indicates systemic misconfiguration and is treated as
	// fatal by the worker.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
