// Package errors provides structured error types for the ADS symbol catalog.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: symbol path, Go/PLC type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseWrite, errors.KindTypeMismatch).
//		Path("MAIN", "counter").
//		GoType("string").
//		TypeName("INT").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NoSuchField(path, "ST_Axis", "velocity")
//	err := errors.OutOfBounds(errors.PhaseAccess, path, 10, 5)
//
// Kinds map onto the failure taxonomy of the catalog: KindMalformedRecord
// for bad upload blobs, KindUnknownType for unresolvable type names,
// KindOutOfBounds and KindDimensionMismatch for index errors, and so on.
// IsKind matches a kind regardless of phase.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
