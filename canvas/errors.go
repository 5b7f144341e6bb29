package canvas

import "errors"

var (
	// ErrFormatMismatch is returned when two canvases must share format and
	// dimensions but do not.
	ErrFormatMismatch = errors.New("canvas: format mismatch")

	// ErrInvalidCanvas is returned when a canvas cannot be created from the
	// given dimensions, stride or memory.
	ErrInvalidCanvas = errors.New("canvas: invalid canvas")
)
