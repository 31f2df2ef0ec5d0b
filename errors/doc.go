// Package errors provides structured error types for bisresample.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a path (export or parameter name), expected/actual
// descriptions, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
//		Path("resampleImageWASM").
//		Expected("(i32, i32, i32) -> (i32)").
//		Actual("(i32) -> (i32)").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidParam("interpolation", "2", "must be one of 0, 1, 3")
//	err := errors.OutOfBounds(errors.PhaseUnmarshal, 1024, 64, 512)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
