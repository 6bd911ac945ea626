package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match with errors.Is; every wrapped error carries the
// entity kind and key so the caller can retry or report.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrAlreadyMember  = errors.New("already a member")
	ErrInvalidInput   = errors.New("invalid input")
	ErrPartialFailure = errors.New("partially applied")
)

func NotFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}

func Conflict(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrConflict)
}

func Invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}

// Partial marks a multi-step mutation that succeeded on some sub-steps only.
// Re-running the same operation is safe: every sub-step is idempotent.
func Partial(op string, errs ...error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPartialFailure, errors.Join(errs...))
}
