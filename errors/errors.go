// Package errors provides error handling for traceview.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := acquire(); err != nil {
//	    return errors.Wrap(err, "failed to acquire batch")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrEndOfData) {
//	    // cursor exhausted
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection and marking
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Mark      = crdb.Mark
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across traceview.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrEndOfData signals that a cursor has no further batches. It is the
	// normal termination condition of acquisition, never a failure.
	ErrEndOfData = New("end of data")

	// ErrStaleCursor indicates a cursor minted before the session was
	// reopened or re-inferred; its window positions are no longer valid.
	ErrStaleCursor = New("stale cursor")

	// ErrTableNotFound indicates the requested table does not exist in the
	// capture.
	ErrTableNotFound = New("table not found")

	// ErrMetadataUnavailable indicates the store cannot supply page-level
	// liveness metadata; callers degrade to liveness "unknown", they do
	// not fail.
	ErrMetadataUnavailable = New("liveness metadata unavailable")

	// ErrAcquisition indicates an I/O failure at the storage boundary.
	// It is scoped to one batch request; the session remains usable.
	ErrAcquisition = New("acquisition failure")
)

// IsEndOfData reports whether err is or wraps ErrEndOfData.
func IsEndOfData(err error) bool {
	return err != nil && Is(err, ErrEndOfData)
}

// IsStaleCursor reports whether err is or wraps ErrStaleCursor.
func IsStaleCursor(err error) bool {
	return err != nil && Is(err, ErrStaleCursor)
}
