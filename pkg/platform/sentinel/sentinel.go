package sentinel

import "errors"

// Sentinel dependency errors. Stores return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrOwnerTaken  = errors.New("owner already holds a credential")
	ErrIDTaken     = errors.New("credential id already issued")
	ErrUnavailable = errors.New("unavailable")
)
