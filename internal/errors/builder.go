package errors

import (
	"github.com/cockroachdb/errors"
)

// ErrorBuilder chains context onto an error before marking it with one of the
// package sentinels. It does not implement the error interface on purpose:
// Mark must be the last call in the chain, so an unfinished chain cannot be
// returned as an error by accident.
type ErrorBuilder struct {
	err error
}

// NewError starts a builder chain from a new error message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// WithError starts a builder chain from an existing error
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithHint attaches a safe, user-facing message to the error
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

// WithHintf is WithHint with formatting
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// Mark finishes the chain by marking the error with a sentinel so callers can
// match it with the package's Is helpers
func (b *ErrorBuilder) Mark(reference error) error {
	return errors.Mark(b.err, reference)
}
