package models

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed marks a failed external data retrieval for one symbol.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInvalidInput marks a caller error rejected at the mutation boundary.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing position or watchlist entry.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks an attempt to add a symbol that is already present.
	ErrDuplicate = errors.New("already exists")
)

// FetchError wraps a provider failure with the symbol and operation.
type FetchError struct {
	Symbol string
	Op     string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// NewFetchError wraps err as a FetchError.
func NewFetchError(symbol, op string, err error) error {
	return &FetchError{Symbol: symbol, Op: op, Err: err}
}

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid returns a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
