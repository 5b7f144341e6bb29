package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/canvas"
)

// Backend name constants.
const (
	// NameSoftware is the in-memory backend, always available.
	NameSoftware = "software"
	// NameEbiten is the windowed backend built on ebiten.
	NameEbiten = "ebiten"
	// NameSDL is the windowed backend built on SDL2.
	NameSDL = "sdl"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotOpen is returned by surface operations before Open or after
	// Close.
	ErrNotOpen = errors.New("backend: surface not open")

	// ErrAlreadyOpen is returned by a second Open.
	ErrAlreadyOpen = errors.New("backend: surface already open")

	// ErrStop may be returned by a Runner's frame function to end Run
	// without an error.
	ErrStop = errors.New("backend: stop")

	// ErrUnknownTexture is returned for texture IDs the backend does not
	// hold.
	ErrUnknownTexture = fmt.Errorf("backend: unknown texture: %w", framekit.ErrInvalidArgument)

	// ErrUnsupportedFormat is returned by CreateTexture for pixel formats
	// the backend cannot upload.
	ErrUnsupportedFormat = fmt.Errorf("backend: unsupported texture format: %w", framekit.ErrInvalidArgument)
)

// TextureID identifies a backend texture. Zero is never a valid ID.
type TextureID uint32

// BlendMode selects how Copy and FillRect combine with the target.
type BlendMode uint8

const (
	// BlendNone replaces target pixels.
	BlendNone BlendMode = iota
	// BlendAlpha composites source over target using source alpha.
	BlendAlpha
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendNone:
		return "None"
	case BlendAlpha:
		return "Alpha"
	}
	return fmt.Sprintf("BlendMode(%d)", m)
}

// SurfaceConfig describes the presentation surface to open.
type SurfaceConfig struct {
	// Title is the window title.
	Title string

	// Width and Height are the logical drawing size. Rectangles passed to
	// FillRect and Copy as destinations are in this space.
	Width, Height int

	// WindowWidth and WindowHeight are the physical window size. Zero
	// means the logical size.
	WindowWidth, WindowHeight int

	// Fullscreen requests a fullscreen window.
	Fullscreen bool

	// Smooth selects bilinear filtering when textures are stretched.
	// Nearest-neighbor is used otherwise.
	Smooth bool
}

// WindowSize returns the physical window size, defaulting to the logical
// size.
func (c SurfaceConfig) WindowSize() (int, int) {
	w, h := c.WindowWidth, c.WindowHeight
	if w <= 0 {
		w = c.Width
	}
	if h <= 0 {
		h = c.Height
	}
	return w, h
}

// SurfaceInfo describes an open surface.
type SurfaceInfo struct {
	// Name is the backend name.
	Name string

	// Width and Height are the physical target size in pixels.
	Width, Height int

	// Format is the pixel format presented to the display.
	Format gputypes.TextureFormat
}

// Backend is a presentation surface with textures. The compositor uploads
// framebuffers into textures and composites them onto the surface.
//
// All methods are called from the render goroutine. Rectangles are
// optional: a nil source selects the whole texture and a nil destination
// the whole logical surface.
//
// Backends must be registered via Register() and are selected via
// NewBackend() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "sdl").
	Name() string

	// Open acquires the window and renderer.
	Open(cfg SurfaceConfig) error

	// Close releases every texture and the surface. Closing a closed
	// backend does nothing.
	Close() error

	// Info describes the open surface.
	Info() SurfaceInfo

	// CreateTexture allocates a w×h texture of pixel format f.
	CreateTexture(w, h int, f canvas.Format) (TextureID, error)

	// UpdateTexture replaces the texture contents with pixels laid out in
	// rows of stride bytes.
	UpdateTexture(id TextureID, pixels []byte, stride int) error

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)

	// SetBlendMode sets the blend mode for later FillRect and Copy calls.
	SetBlendMode(m BlendMode) error

	// SetDrawColor sets the color used by Clear and FillRect.
	SetDrawColor(c framekit.Color) error

	// Clear fills the whole surface with the draw color.
	Clear() error

	// FillRect fills r with the draw color.
	FillRect(r *framekit.Rect) error

	// Copy draws src of a texture into dst, scaled to fit, with its
	// alpha multiplied by alpha/255.
	Copy(id TextureID, src, dst *framekit.Rect, alpha uint8) error

	// Present shows the composed surface.
	Present() error
}

// Runner is implemented by backends that own the application loop. Run
// calls frame once per display refresh until it returns an error or the
// window closes. A frame error of ErrStop ends Run with a nil error.
type Runner interface {
	Run(frame func() error) error
}
