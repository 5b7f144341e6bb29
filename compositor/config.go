package compositor

import (
	"fmt"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
)

// Config describes the video mode.
type Config struct {
	// Width and Height are the framebuffer size.
	Width, Height int

	// WindowWidth and WindowHeight are the window size. Zero means the
	// framebuffer size.
	WindowWidth, WindowHeight int

	Flags Flags
	Title string

	// Backend names the registered backend Initialize opens when no
	// backend was supplied with WithBackend. Empty selects backend.Default.
	Backend string
}

// DefaultConfig returns a 320×240 framebuffer in a 640×480 window on the
// software backend.
func DefaultConfig() Config {
	return Config{
		Width:        framekit.ScreenWidth,
		Height:       framekit.ScreenHeight,
		WindowWidth:  2 * framekit.ScreenWidth,
		WindowHeight: 2 * framekit.ScreenHeight,
		Title:        "framekit",
		Backend:      backend.NameSoftware,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: framebuffer %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.WindowWidth < 0 || c.WindowHeight < 0:
		return fmt.Errorf("%w: window %dx%d", ErrInvalidConfig, c.WindowWidth, c.WindowHeight)
	}
	return nil
}

func (c Config) surface() backend.SurfaceConfig {
	return backend.SurfaceConfig{
		Title:        c.Title,
		Width:        c.Width,
		Height:       c.Height,
		WindowWidth:  c.WindowWidth,
		WindowHeight: c.WindowHeight,
		Fullscreen:   c.Flags.Has(Fullscreen),
		Smooth:       c.Flags.Has(ScaleBilinear),
	}
}
