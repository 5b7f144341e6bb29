package engine

import (
	"fmt"
	"time"

	"github.com/gogpu/framekit/compositor"
	"github.com/gogpu/framekit/drawqueue"
)

// Config configures a System.
type Config struct {
	Video compositor.Config
	Queue drawqueue.Config

	// FrameInterval paces Run on backends that do not own the loop.
	FrameInterval time.Duration
}

// DefaultConfig returns the default video mode and queue limits at 60
// frames per second.
func DefaultConfig() Config {
	return Config{
		Video:         compositor.DefaultConfig(),
		Queue:         drawqueue.DefaultConfig(),
		FrameInterval: time.Second / 60,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := c.Video.Validate(); err != nil {
		return err
	}
	if err := c.Queue.Validate(); err != nil {
		return err
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("%w: frame interval %v", compositor.ErrInvalidConfig, c.FrameInterval)
	}
	return nil
}
