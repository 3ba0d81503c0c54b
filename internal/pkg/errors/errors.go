package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	// ErrRetrievalUnavailable means the vector index could not be reached;
	// the query fails as a whole, no partial results.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrCompositionUnavailable means retrieval worked but the answer
	// generator is down. Distinct from "no results" so callers know a retry
	// may help.
	ErrCompositionUnavailable = errors.New("composition unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
