package scan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind represents the category of an aggregation error
type ErrorKind int

const (
	// ErrKindValidation indicates malformed configuration (non-positive
	// duration, unknown source ID). Rejected before any scan task starts.
	ErrKindValidation ErrorKind = iota
	// ErrKindSource indicates one scan source failed. Recorded per-source,
	// never aborts the aggregation.
	ErrKindSource
	// ErrKindTimeout indicates a source did not settle within the scan
	// duration plus the grace period.
	ErrKindTimeout
	// ErrKindUnavailable indicates a source cannot run on this platform
	// (missing adapter, missing helper binary).
	ErrKindUnavailable
	// ErrKindTotalFailure indicates every configured source failed and no
	// devices were accumulated. The only kind that fails the whole call.
	ErrKindTotalFailure
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindValidation:
		return "Validation Error"
	case ErrKindSource:
		return "Source Failure"
	case ErrKindTimeout:
		return "Timeout"
	case ErrKindUnavailable:
		return "Source Unavailable"
	case ErrKindTotalFailure:
		return "Total Failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// ScanError is the error type produced by the aggregation engine.
type ScanError struct {
	Kind     ErrorKind
	SourceID string // Source that failed, empty for call-level errors
	Message  string
	Err      error // Underlying cause, may be nil
}

// Error implements the error interface
func (e *ScanError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.SourceID != "" {
		fmt.Fprintf(&b, " [%s]", e.SourceID)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *ScanError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ScanError for malformed configuration
func NewValidationError(format string, args ...interface{}) *ScanError {
	return &ScanError{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewSourceError wraps a per-source failure
func NewSourceError(sourceID string, err error) *ScanError {
	return &ScanError{Kind: ErrKindSource, SourceID: sourceID, Message: "scan failed", Err: err}
}

// NewTimeoutError marks a source that did not settle in time
func NewTimeoutError(sourceID string) *ScanError {
	return &ScanError{Kind: ErrKindTimeout, SourceID: sourceID,
		Message: "source did not settle within scan duration plus grace period"}
}

// NewUnavailableError marks a source that cannot run on this platform
func NewUnavailableError(sourceID, reason string) *ScanError {
	return &ScanError{Kind: ErrKindUnavailable, SourceID: sourceID, Message: reason}
}

// TotalFailureError is returned when every configured source failed and zero
// devices were accumulated. It wraps all individual source errors.
type TotalFailureError struct {
	// PerSource maps each failed source ID to its error.
	PerSource map[string]error
}

// Error implements the error interface
func (e *TotalFailureError) Error() string {
	ids := make([]string, 0, len(e.PerSource))
	for id := range e.PerSource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "all %d scan sources failed:", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, " %s: %v;", id, e.PerSource[id])
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Unwrap exposes the individual source errors to errors.Is/errors.As
func (e *TotalFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.PerSource))
	for _, err := range e.PerSource {
		errs = append(errs, err)
	}
	return errs
}

// IsValidationError reports whether err is a configuration validation failure
func IsValidationError(err error) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Kind == ErrKindValidation
}

// IsTimeout reports whether err is a scan timeout
func IsTimeout(err error) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Kind == ErrKindTimeout
}

// IsTotalFailure reports whether err means every configured source failed
func IsTotalFailure(err error) bool {
	var te *TotalFailureError
	return errors.As(err, &te)
}
