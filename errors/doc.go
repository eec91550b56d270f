// Package errors provides structured error types for the refkit library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: context path, payload type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
//		Type("[]byte").
//		Value(10).
//		Detail("index 10 out of bounds (length 5)").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UseAfterRelease(errors.PhaseAccess, "*Conn")
//	err := errors.OutOfBounds(errors.PhaseAccess, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// Misuse of reference-counted handles is reported by panicking with an *Error
// value, so a recovered panic carries the same structure as a returned error.
package errors
