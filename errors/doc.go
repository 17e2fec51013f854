// Package errors provides structured error types for the capability library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries a namespace/function path, a detail
// message, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLink, errors.KindDuplicateName).
//		Path("wippy:caps/kv@0.1.0", "get").
//		Detail("function already defined").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateName("wippy:caps/kv@0.1.0", "get")
//	err := errors.Registration("wippy:caps/kv@0.1.0", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
