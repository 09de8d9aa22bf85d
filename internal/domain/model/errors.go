package model

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginTimeout is returned when the interactive login did not produce a
	// token before its deadline. It is final for that attempt and must not be
	// retried in a loop.
	ErrLoginTimeout = errors.New("interactive login timed out")

	// ErrLoginUnavailable is returned when the login capability could not be
	// started at all (for example, no browser is installed).
	ErrLoginUnavailable = errors.New("interactive login unavailable")
)

// PersistenceError reports a failed write of a persisted record. It is
// advisory: the in-memory value stays authoritative.
type PersistenceError struct {
	Key CredentialKey
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-authentication failure from the remote service, or a
// transport failure, after the single permitted retry. StatusCode is zero for
// transport failures.
type UpstreamError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream %s %s: %v", e.Method, e.Path, e.Err)
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("upstream %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, truncate(e.Body, 256))
	}
	return fmt.Sprintf("upstream %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// maxBodyExcerpt bounds the upstream body echoed back to callers.
const maxBodyExcerpt = 512

// BodyExcerpt returns the upstream response body, truncated for display.
func (e *UpstreamError) BodyExcerpt() string {
	return truncate(e.Body, maxBodyExcerpt)
}

// Unauthorized reports whether the upstream rejected the credential.
func (e *UpstreamError) Unauthorized() bool {
	return e.StatusCode == 401
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
