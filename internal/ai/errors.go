package ai

import (
	"errors"
	"fmt"
)

// ErrNotConfigured: the selected provider has no credential.
var ErrNotConfigured = errors.New("ai: provider is not configured")

// Error is a transport failure talking to the upstream model. The reply, if
// any, never reaches the sanitizer.
type Error struct {
	Op     string
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai: %s: status %d: %v", e.Op, e.Status, e.Cause)
	}
	return fmt.Sprintf("ai: %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
