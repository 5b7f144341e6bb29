package scaler

import (
	"errors"
	"fmt"

	"github.com/gogpu/framekit"
)

var (
	// ErrUnsupportedFactor is returned by New for factors outside 2..4.
	ErrUnsupportedFactor = fmt.Errorf("scaler: unsupported factor: %w", framekit.ErrInvalidArgument)

	// ErrUnknownKind is returned by New for an unknown scaler family.
	ErrUnknownKind = fmt.Errorf("scaler: unknown kind: %w", framekit.ErrInvalidArgument)

	// ErrBufferSize is returned by Scale when a buffer is too small for the
	// requested dimensions.
	ErrBufferSize = fmt.Errorf("scaler: buffer too small: %w", framekit.ErrInvalidArgument)

	// ErrClosed is returned by Scale after Close.
	ErrClosed = errors.New("scaler: closed")
)
