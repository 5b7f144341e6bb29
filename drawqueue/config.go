package drawqueue

import "fmt"

// Config holds queue capacity and thresholds, all counted in commands.
type Config struct {
	// MaxSize is the queue capacity. Storage for it is allocated up front.
	MaxSize int

	// ForceSlowdownSize is the backlog at which producers yield the
	// processor after each push to let the consumer catch up.
	ForceSlowdownSize int

	// ForceBreakSize is the backlog at which an open batch is force-reset.
	ForceBreakSize int

	// LivelockMax caps the commands dispatched by one Flush. The remainder
	// stays queued for the next call.
	LivelockMax int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:           16384,
		ForceSlowdownSize: 4096,
		ForceBreakSize:    16384,
		LivelockMax:       4096,
	}
}

// DebugConfig returns a small configuration that exercises backpressure
// and batch breaking quickly.
func DebugConfig() Config {
	return Config{
		MaxSize:           512,
		ForceSlowdownSize: 128,
		ForceBreakSize:    512,
		LivelockMax:       256,
	}
}

// Validate checks that the capacity is positive and every threshold fits
// within it.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: MaxSize %d", ErrInvalidConfig, c.MaxSize)
	}
	if c.LivelockMax <= 0 || c.LivelockMax > c.MaxSize {
		return fmt.Errorf("%w: LivelockMax %d", ErrInvalidConfig, c.LivelockMax)
	}
	if c.ForceSlowdownSize < 0 || c.ForceSlowdownSize > c.MaxSize {
		return fmt.Errorf("%w: ForceSlowdownSize %d", ErrInvalidConfig, c.ForceSlowdownSize)
	}
	if c.ForceBreakSize <= 0 || c.ForceBreakSize > c.MaxSize {
		return fmt.Errorf("%w: ForceBreakSize %d", ErrInvalidConfig, c.ForceBreakSize)
	}
	return nil
}
