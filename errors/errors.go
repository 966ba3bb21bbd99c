// Package errors provides error handling for quill-ls.
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
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrStaleVersion) {
//	    // discard the edit, keep the connection alive
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

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Assertions and panics
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the language-server core. Each corresponds to one
// member of the protocol error taxonomy; the dispatcher maps them onto
// JSON-RPC error codes. Wrap these with errors.Wrap() to add context while
// preserving the type.
var (
	// ErrDuplicateDocument indicates an open for a URI that is already open
	ErrDuplicateDocument = New("document already open")

	// ErrStaleVersion indicates a change whose version is not the expected successor
	ErrStaleVersion = New("stale document version")

	// ErrUnknownDocument indicates an operation on a URI that is not open
	ErrUnknownDocument = New("unknown document")

	// ErrAnalyzerFault indicates an unexpected internal analyzer failure,
	// as opposed to a normal degraded result for malformed source
	ErrAnalyzerFault = New("analyzer fault")

	// ErrRequestCancelled indicates cooperative cancellation of an in-flight request
	ErrRequestCancelled = New("request cancelled")

	// ErrMethodNotFound indicates a request for a method outside the supported set
	ErrMethodNotFound = New("method not found")

	// ErrNotInitialized indicates a request received before the initialize handshake
	ErrNotInitialized = New("server not initialized")

	// ErrAlreadyInitialized indicates a second initialize request
	ErrAlreadyInitialized = New("server already initialized")

	// ErrShuttingDown indicates a request received after shutdown was accepted
	ErrShuttingDown = New("server shutting down")

	// ErrInvalidParams indicates request parameters that failed to decode
	ErrInvalidParams = New("invalid params")
)

// IsStaleVersion checks if an error is or wraps ErrStaleVersion
func IsStaleVersion(err error) bool {
	return err != nil && Is(err, ErrStaleVersion)
}

// IsUnknownDocument checks if an error is or wraps ErrUnknownDocument
func IsUnknownDocument(err error) bool {
	return err != nil && Is(err, ErrUnknownDocument)
}

// IsDuplicateDocument checks if an error is or wraps ErrDuplicateDocument
func IsDuplicateDocument(err error) bool {
	return err != nil && Is(err, ErrDuplicateDocument)
}

// IsAnalyzerFault checks if an error is or wraps ErrAnalyzerFault
func IsAnalyzerFault(err error) bool {
	return err != nil && Is(err, ErrAnalyzerFault)
}

// IsRequestCancelled checks if an error is or wraps ErrRequestCancelled
func IsRequestCancelled(err error) bool {
	return err != nil && Is(err, ErrRequestCancelled)
}
