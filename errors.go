package framekit

import "errors"

// Error taxonomy shared by every sub-package. Package-specific errors wrap
// one of these so callers can classify failures with errors.Is.
var (
	// ErrNotInitialized is returned when an operation runs before a
	// successful initialize or after teardown.
	ErrNotInitialized = errors.New("framekit: not initialized")

	// ErrInvalidArgument is returned for out-of-range screens, negative
	// extents and missing handles.
	ErrInvalidArgument = errors.New("framekit: invalid argument")

	// ErrBackendFailure is returned when a presentation surface or texture
	// operation fails.
	ErrBackendFailure = errors.New("framekit: backend failure")

	// ErrInitFailure is returned when a setup step fails during initialize.
	ErrInitFailure = errors.New("framekit: initialization failed")
)
