package drawqueue

import (
	"errors"
	"fmt"

	"github.com/gogpu/framekit"
)

var (
	// ErrQueueFull is returned when a command does not fit and waiting is
	// not possible.
	ErrQueueFull = errors.New("drawqueue: queue full")

	// ErrInvalidConfig is returned by Config.Validate and New.
	ErrInvalidConfig = fmt.Errorf("drawqueue: invalid config: %w", framekit.ErrInvalidArgument)

	// ErrWouldBlock is returned by TryPush when the queue is full.
	ErrWouldBlock = fmt.Errorf("drawqueue: push would block: %w", ErrQueueFull)

	// ErrClosed is returned by pushes after Close, and to producers blocked
	// when Close is called.
	ErrClosed = errors.New("drawqueue: queue closed")

	// ErrNilCommand is returned when pushing a nil command.
	ErrNilCommand = fmt.Errorf("drawqueue: nil command: %w", framekit.ErrInvalidArgument)
)
