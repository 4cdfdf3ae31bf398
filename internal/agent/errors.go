package agent

import "errors"

// Sentinel errors for the query pipeline. Callers check them with
// errors.Is; session absence surfaces as session.ErrNotFound unchanged.
var (
	// ErrInvalidInput marks a query that fails validation (empty or
	// whitespace-only).
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrieval marks a retrieval failure. The pipeline recovers
	// from it by generating without context; it surfaces only through
	// QueryResult.Degraded.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration marks a model generation failure. It is fatal to
	// the query and nothing is recorded in the session.
	ErrGeneration = errors.New("generation failed")
)
