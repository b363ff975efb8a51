package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Adapters return these (optionally
// wrapped) so services can translate them into domain errors in one place.
//
// These represent factual states about external resources, not validation
// failures:
// - ErrNotFound: account or record does not exist upstream
// - ErrConflict: resource already exists in a conflicting state
// - ErrInvalidInput: the provider rejected the value itself (e.g. malformed email)
// - ErrUnavailable: provider temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("unavailable")
)
