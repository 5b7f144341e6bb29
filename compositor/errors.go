package compositor

import (
	"errors"
	"fmt"

	"github.com/gogpu/framekit"
)

var (
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("compositor: already initialized")

	// ErrInvalidConfig is returned for configurations Validate rejects.
	ErrInvalidConfig = fmt.Errorf("compositor: invalid config: %w", framekit.ErrInvalidArgument)
)

// BackendError records a failed backend call. It matches both
// framekit.ErrBackendFailure and the backend's own error.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("compositor: %s: %v", e.Op, e.Err)
}

// Unwrap returns the classification and the cause.
func (e *BackendError) Unwrap() []error {
	return []error{framekit.ErrBackendFailure, e.Err}
}

func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}
