// Package launchererrors provides structured error types with the
// taxonomy from spec.md §7: each kind carries its own retry/propagation
// policy, reified as a notification rather than surfaced synchronously
// to the UI thread.
package launchererrors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind categorizes a launcher error per spec.md §7's taxonomy table.
type Kind string

const (
	// TransientNetwork is a timeout or DNS failure: retry with backoff.
	TransientNetwork Kind = "transient_network"
	// RateLimited is an HTTP 403 with a reset time: retry at that time.
	RateLimited Kind = "rate_limited"
	// PermanentEndpoint is a non-retryable HTTP error (5xx and friends).
	PermanentEndpoint Kind = "permanent_endpoint"
	// MalformedItem is a single bad JSON release entry: skip and continue.
	MalformedItem Kind = "malformed_item"
	// InstallFailure is a download/extract failure.
	InstallFailure Kind = "install_failure"
	// LaunchFailure is a spawn failure.
	LaunchFailure Kind = "launch_failure"
	// MissingPrecondition is a version that vanished before launch.
	MissingPrecondition Kind = "missing_precondition"
)

// LauncherError is a structured error carrying enough context to drive
// a user-facing notification without the background task touching the
// UI thread directly.
type LauncherError struct {
	Kind        Kind
	Operation   string
	UserMessage string
	Cause       error
}

// Error implements the error interface.
func (e *LauncherError) Error() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s failed", e.Operation)
}

// Unwrap returns the underlying cause, if any.
func (e *LauncherError) Unwrap() error { return e.Cause }

// Suggestion returns a short, user-facing recommendation for recovering
// from this kind of error.
func (e *LauncherError) Suggestion() string {
	switch e.Kind {
	case TransientNetwork:
		return "Check your internet connection. We'll keep retrying automatically."
	case RateLimited:
		return "We've made too many requests; we'll retry once the limit resets."
	case PermanentEndpoint:
		return "The update service is unavailable right now. Try again later."
	case MalformedItem:
		return "That release entry looked malformed and was skipped."
	case InstallFailure:
		return "Try installing again."
	case LaunchFailure:
		return "This install looks corrupted. Uninstall and reinstall it."
	case MissingPrecondition:
		return "The version is no longer available. Pick another one."
	default:
		return ""
	}
}

// New creates a LauncherError with no underlying cause.
func New(kind Kind, operation, userMessage string) *LauncherError {
	return &LauncherError{Kind: kind, Operation: operation, UserMessage: userMessage}
}

// Wrap wraps cause with a LauncherError carrying kind/operation context.
func Wrap(cause error, kind Kind, operation string) *LauncherError {
	return &LauncherError{Kind: kind, Operation: operation, Cause: errors.WithStack(cause)}
}

// WithMessage attaches a user-facing message and returns e for chaining.
func (e *LauncherError) WithMessage(message string) *LauncherError {
	e.UserMessage = message
	return e
}

// IsKind reports whether err is a *LauncherError of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *LauncherError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

// String renders a detailed, developer-facing view for debug logging.
func (e *LauncherError) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))
	parts = append(parts, fmt.Sprintf("operation=%s", e.Operation))
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	return strings.Join(parts, " ")
}
