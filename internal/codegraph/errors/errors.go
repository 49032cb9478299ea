// Package errors defines the error taxonomy shared across the engine.
//
// Every boundary-facing error carries a Code, a human Message, optional
// Details and a TraceID so callers across process boundaries can correlate
// failures without parsing message text.
package errors

import (
	"errors"
	"fmt"
)

// Code enumerates the error taxonomy. Domain-specific codes are prefixed by
// their owning subsystem (workspace_*, execution_*, job_*, analysis_*,
// graph_*, verify_*).
type Code string

const (
	NotFound         Code = "not_found"
	AlreadyExists    Code = "already_exists"
	InvalidArgument  Code = "invalid_argument"
	PermissionDenied Code = "permission_denied"
	Timeout          Code = "timeout"
	RateLimited      Code = "rate_limited"
	Internal         Code = "internal"

	WorkspaceNotReady  Code = "workspace_not_ready"
	ExecutionFailed    Code = "execution_failed"
	JobQueueFull       Code = "job_queue_full"
	AnalysisIncomplete Code = "analysis_incomplete"
	GraphInconsistent  Code = "graph_inconsistent"
	VerifyMismatch     Code = "verify_mismatch"
)

// Error is the concrete type returned at every external boundary described
// in §7. It implements the standard error interface plus Unwrap so callers
// can use errors.Is/errors.As against both Code and a wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	TraceID string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, &Error{Code: X}) to match purely on Code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// New constructs an Error with no wrapped cause.
func New(code Code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap constructs an Error that wraps cause, preserving it for errors.Unwrap.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithTrace returns a copy of e carrying the given trace id.
func (e *Error) WithTrace(traceID string) *Error {
	clone := *e
	clone.TraceID = traceID
	return &clone
}

// Classification partitions errors raised by storage/index writers, per §4.13/§7.
type Classification string

const (
	Transient      Classification = "TRANSIENT"
	Permanent      Classification = "PERMANENT"
	Infrastructure Classification = "INFRASTRUCTURE"
)

// Classified pairs an error with its handling classification so callers can
// decide whether to retry, skip, or abort the batch.
type Classified struct {
	Err   error
	Class Classification
}

func (c *Classified) Error() string { return c.Err.Error() }
func (c *Classified) Unwrap() error { return c.Err }

// ClassifyStorage buckets a raw storage/index error into the §4.13 taxonomy.
// It is intentionally conservative: anything not recognized as transient or
// infrastructure is treated as permanent so a single bad file cannot stall a
// batch indefinitely.
func ClassifyStorage(err error) Classification {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Code {
		case Timeout, RateLimited:
			return Transient
		case Internal:
			return Infrastructure
		}
	}
	return Permanent
}
