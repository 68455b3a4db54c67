package planning

import "errors"

// Sentinel errors returned by the Engine.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrGridStoreRequired is returned when the grid store is nil.
	ErrGridStoreRequired = errors.New("grid store is required")

	// ErrSelectionBusRequired is returned when the selection bus is nil.
	ErrSelectionBusRequired = errors.New("selection bus is required")

	// ErrBackendServiceRequired is returned when the backend service is nil.
	ErrBackendServiceRequired = errors.New("backend service is required")

	// ErrAlreadyStarted is returned when Start is called on a running engine.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrNotStarted is returned when Stop is called on an engine that hasn't
	// been started.
	ErrNotStarted = errors.New("engine not started")

	// ErrRowNotFound is returned when a row index is out of range.
	ErrRowNotFound = errors.New("row not found")
)
