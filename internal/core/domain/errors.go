package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates the upstream source authoritatively has no such resource.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedSource indicates a URI does not belong to any configured source.
	// Permanent: never cached, never retried.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrUpstream indicates a transport, timeout or unexpected-shape failure
	// talking to an upstream source. Never cached.
	ErrUpstream = errors.New("upstream error")

	// ErrRateLimited indicates the upstream rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// UpstreamError describes a failed upstream call.
// It matches ErrUpstream with errors.Is.
type UpstreamError struct {
	Source     Source
	Op         string
	URI        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Source, e.Op, e.URI)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// IsUpstream checks if the error is an upstream failure.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
