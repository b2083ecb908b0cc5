package worker

import (
	"errors"
	"strings"

	"github.com/phrazzld/capture-worker/internal/generation"
)

// Sentinel errors for the worker's failure taxonomy. Fetch and
// persistence failures are recoverable and leave the item in the error
// status; fatal errors halt the whole process.
var (
	// ErrFetch is returned when an image payload cannot be downloaded.
	ErrFetch = errors.New("blob fetch failed")

	// ErrPersistence is returned when the generated note cannot be
	// written locally. Distinguished from upstream failures because it
	// indicates a local environment problem.
	ErrPersistence = errors.New("archive write failed")

	// ErrFatalConfig marks failures that indicate systemic
	// misconfiguration. Structured classification; the signature match
	// below is the fallback for upstream errors without one.
	ErrFatalConfig = errors.New("fatal configuration error")

	// ErrFatalShutdown wraps a fatal failure on its way up to the
	// dispatch loop, which stops and lets the process exit non-zero.
	// Representing shutdown as a returned error keeps the mechanism
	// testable without terminating the test process.
	ErrFatalShutdown = errors.New("fatal error, worker shutting down")
)

// fatalSignatures are substrings of upstream error text that indicate a
// misconfiguration which will recur on every subsequent item: rejected
// requests, revoked credentials, permission denials. Matching any of
// them halts the worker for operator intervention.
var fatalSignatures = []string{
	"400",
	"API key",
	"PermissionDenied",
}

// IsFatal reports whether err warrants halting the worker instead of
// isolating the failure to one item. Structured error kinds are checked
// first; the message-signature match is a fallback for upstream errors
// that do not carry structured codes.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrFatalConfig) || errors.Is(err, generation.ErrInvalidConfig) {
		return true
	}

	msg := err.Error()
	for _, signature := range fatalSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}

	return false
}
