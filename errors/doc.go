// Package errors provides structured error types for the go-jni bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, Go/host type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("pkg/Point", "x").
//		GoType("string").
//		HostType("I").
//		Detail("cannot convert string to int").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseEncode, path, "string", "I")
//	err := errors.NotFound(errors.PhaseResolve, "method", "pkg/Point.offset(II)V")
//
// Errors that should surface in the host runtime as a specific exception class
// carry it in HostClass; the exception bridge consults HostException when it
// translates a native failure.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
