package sentinel

import "errors"

// Sentinel dependency errors. Stores and ledger adapters return these (optionally
// wrapped) so services can translate them into domain errors exactly once.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
	ErrRejected      = errors.New("rejected")
)
