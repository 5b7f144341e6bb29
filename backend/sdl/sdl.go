//go:build sdl

// Package sdl provides a windowed backend built on SDL2.
//
// Framebuffer textures are SDL streaming textures in PIXELFORMAT_RGBX8888,
// which matches the framebuffer byte order, so uploads need no conversion.
// Other formats are converted to RGBA first. The renderer's logical size is
// the framebuffer size and SDL scales to the window.
//
// SDL must be driven from a single OS thread. Call runtime.LockOSThread in
// the goroutine that opens the backend and renders frames.
//
// The backend is built only with the sdl tag and registers itself as "sdl"
// on import.
package sdl

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/canvas"
)

// init registers the SDL backend on package import.
func init() {
	backend.Register(backend.NameSDL, func() backend.Backend {
		return New()
	})
}

type texture struct {
	tex     *sdl.Texture
	w, h    int
	format  canvas.Format
	scratch []byte // converted pixels for non-native formats
}

// Backend is the SDL2 backend.
type Backend struct {
	mu sync.Mutex

	window   *sdl.Window
	renderer *sdl.Renderer
	cfg      backend.SurfaceConfig

	textures map[backend.TextureID]*texture
	nextID   backend.TextureID
	blend    backend.BlendMode
	frames   uint64
}

var _ backend.Backend = (*Backend)(nil)

// New creates an unopened SDL backend.
func New() *Backend {
	return &Backend{textures: make(map[backend.TextureID]*texture)}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.NameSDL
}

// Open initializes SDL video and creates the window and renderer.
func (b *Backend) Open(cfg backend.SurfaceConfig) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderer != nil {
		return backend.ErrAlreadyOpen
	}
	w, h := cfg.WindowSize()
	if cfg.Width <= 0 || cfg.Height <= 0 || w <= 0 || h <= 0 {
		return fmt.Errorf("sdl: surface %dx%d in %dx%d window: %w",
			cfg.Width, cfg.Height, w, h, framekit.ErrInvalidArgument)
	}

	if err = sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl: init: %w", err)
	}
	defer func() {
		if err != nil {
			b.destroyLocked()
		}
	}()

	flags := uint32(sdl.WINDOW_SHOWN)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	// #nosec G115 -- window sizes are validated positive and small
	b.window, err = sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(w), int32(h), flags)
	if err != nil {
		return fmt.Errorf("sdl: create window: %w", err)
	}
	b.renderer, err = sdl.CreateRenderer(b.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("sdl: create renderer: %w", err)
	}
	// #nosec G115 -- framebuffer sizes are validated positive and small
	if err = b.renderer.SetLogicalSize(int32(cfg.Width), int32(cfg.Height)); err != nil {
		return fmt.Errorf("sdl: logical size: %w", err)
	}
	quality := "0"
	if cfg.Smooth {
		quality = "1"
	}
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, quality)

	b.cfg = cfg
	framekit.Logger().Info("sdl window opened", "window", fmt.Sprintf("%dx%d", w, h))
	return nil
}

// destroyLocked releases textures, renderer and window in reverse order.
func (b *Backend) destroyLocked() {
	for id, t := range b.textures {
		_ = t.tex.Destroy()
		delete(b.textures, id)
	}
	if b.renderer != nil {
		_ = b.renderer.Destroy()
		b.renderer = nil
	}
	if b.window != nil {
		_ = b.window.Destroy()
		b.window = nil
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
}

// Close destroys every texture, the renderer and the window.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return nil
	}
	b.destroyLocked()
	return nil
}

// Info describes the window.
func (b *Backend) Info() backend.SurfaceInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	info := backend.SurfaceInfo{Name: backend.NameSDL, Format: gputypes.TextureFormatBGRA8Unorm}
	if b.window != nil {
		w, h := b.window.GetSize()
		info.Width, info.Height = int(w), int(h)
	}
	return info
}

// pixelFormat returns the SDL format a texture of format f is stored in.
func pixelFormat(f canvas.Format) uint32 {
	if f == canvas.RGBX8888 {
		return sdl.PIXELFORMAT_RGBX8888
	}
	// Byte order R, G, B, A on little-endian hosts.
	return sdl.PIXELFORMAT_ABGR8888
}

// CreateTexture creates a streaming texture.
func (b *Backend) CreateTexture(w, h int, f canvas.Format) (backend.TextureID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderer == nil {
		return 0, backend.ErrNotOpen
	}
	if !backend.SupportsFormat(f) {
		return 0, fmt.Errorf("%w: %v", backend.ErrUnsupportedFormat, f)
	}
	// #nosec G115 -- texture sizes come from validated framebuffer sizes
	tex, err := b.renderer.CreateTexture(pixelFormat(f), sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
	if err != nil {
		return 0, fmt.Errorf("sdl: create texture %dx%d: %w", w, h, err)
	}
	t := &texture{tex: tex, w: w, h: h, format: f}
	if f != canvas.RGBX8888 {
		t.scratch = make([]byte, w*h*4)
	}
	b.nextID++
	b.textures[b.nextID] = t
	return b.nextID, nil
}

// UpdateTexture uploads pixels. RGBX pixels are uploaded as is.
func (b *Backend) UpdateTexture(id backend.TextureID, pixels []byte, stride int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownTexture, id)
	}
	src, pitch := pixels, stride
	if t.scratch != nil {
		if err := backend.UnpackRGBA(t.scratch, pixels, t.w, t.h, stride, t.format, false); err != nil {
			return fmt.Errorf("sdl: update texture %d: %w", id, err)
		}
		src, pitch = t.scratch, t.w*4
	}
	if len(src) < (t.h-1)*pitch+t.w*4 {
		return fmt.Errorf("sdl: update texture %d: %d bytes: %w", id, len(src), framekit.ErrInvalidArgument)
	}
	if err := t.tex.Update(nil, unsafe.Pointer(&src[0]), pitch); err != nil {
		return fmt.Errorf("sdl: update texture %d: %w", id, err)
	}
	return nil
}

// DestroyTexture releases a texture.
func (b *Backend) DestroyTexture(id backend.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.textures[id]; ok {
		_ = t.tex.Destroy()
		delete(b.textures, id)
	}
}

func sdlBlend(m backend.BlendMode) sdl.BlendMode {
	if m == backend.BlendAlpha {
		return sdl.BLENDMODE_BLEND
	}
	return sdl.BLENDMODE_NONE
}

// SetBlendMode sets the blend mode for FillRect and Copy.
func (b *Backend) SetBlendMode(m backend.BlendMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return backend.ErrNotOpen
	}
	if err := b.renderer.SetDrawBlendMode(sdlBlend(m)); err != nil {
		return fmt.Errorf("sdl: blend mode: %w", err)
	}
	b.blend = m
	return nil
}

// SetDrawColor sets the color for Clear and FillRect.
func (b *Backend) SetDrawColor(c framekit.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return backend.ErrNotOpen
	}
	return b.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
}

// Clear fills the target with the draw color.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return backend.ErrNotOpen
	}
	return b.renderer.Clear()
}

// FillRect fills r, or the whole target when r is nil.
func (b *Backend) FillRect(r *framekit.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return backend.ErrNotOpen
	}
	return b.renderer.FillRect(sdlRect(r))
}

// Copy blits a texture region with alpha modulation.
func (b *Backend) Copy(id backend.TextureID, src, dst *framekit.Rect, alpha uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return backend.ErrNotOpen
	}
	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownTexture, id)
	}
	if err := t.tex.SetBlendMode(sdlBlend(b.blend)); err != nil {
		return fmt.Errorf("sdl: texture blend: %w", err)
	}
	if err := t.tex.SetAlphaMod(alpha); err != nil {
		return fmt.Errorf("sdl: alpha mod: %w", err)
	}
	return b.renderer.Copy(t.tex, sdlRect(src), sdlRect(dst))
}

// Present shows the rendered frame.
func (b *Backend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderer == nil {
		return backend.ErrNotOpen
	}
	b.renderer.Present()
	b.frames++
	return nil
}

// Frames returns the number of presented frames.
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// PumpEvents drains the SDL event queue and reports whether the window
// was asked to close.
func (b *Backend) PumpEvents() (quit bool) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		if _, ok := ev.(*sdl.QuitEvent); ok {
			quit = true
		}
	}
	return quit
}

func sdlRect(r *framekit.Rect) *sdl.Rect {
	if r == nil {
		return nil
	}
	// #nosec G115 -- rectangles are framebuffer coordinates
	return &sdl.Rect{
		X: int32(r.Corner.X),
		Y: int32(r.Corner.Y),
		W: int32(r.Extent.W),
		H: int32(r.Extent.H),
	}
}
