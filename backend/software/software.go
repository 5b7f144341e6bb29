// Package software provides the in-memory presentation backend.
//
// The surface is an *image.RGBA at window size. Textures are kept as
// straight-alpha RGBA buffers and composited with golang.org/x/image/draw.
// Present snapshots the surface so tests and tools can inspect frames.
//
// The backend registers itself as "software" on import.
package software

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/canvas"
	intImage "github.com/gogpu/framekit/internal/image"
)

// init registers the software backend on package import.
func init() {
	backend.Register(backend.NameSoftware, func() backend.Backend {
		return New()
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithDevice takes the reported surface format from a host GPU device.
// An undefined format keeps the default RGBA8Unorm.
func WithDevice(p gpucontext.DeviceProvider) Option {
	return func(b *Backend) {
		if p == nil {
			return
		}
		if f := p.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			b.format = f
		}
	}
}

// WithFailures makes the named methods (e.g. "Open", "CreateTexture",
// "Present") return the mapped error. Used to exercise error paths.
func WithFailures(failures map[string]error) Option {
	return func(b *Backend) {
		b.failures = failures
	}
}

// WithPresentHook calls fn with every presented frame. The frame is owned
// by the backend and valid until the next Present.
func WithPresentHook(fn func(frame *image.RGBA)) Option {
	return func(b *Backend) {
		b.hook = fn
	}
}

type texture struct {
	src canvas.Format
	buf *intImage.ImageBuf // RGBA8, straight alpha
}

func (t *texture) image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    t.buf.Data(),
		Stride: t.buf.Stride(),
		Rect:   image.Rect(0, 0, t.buf.Width(), t.buf.Height()),
	}
}

// Backend is the in-memory backend. It is safe for concurrent use, though
// the compositor drives it from one goroutine.
type Backend struct {
	mu sync.Mutex

	open    bool
	cfg     backend.SurfaceConfig
	surface *image.RGBA
	frame   *image.RGBA
	frames  uint64

	textures map[backend.TextureID]*texture
	nextID   backend.TextureID

	blend backend.BlendMode
	color framekit.Color

	format   gputypes.TextureFormat
	failures map[string]error
	hook     func(*image.RGBA)
}

var _ backend.Backend = (*Backend)(nil)

// New creates an unopened software backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		textures: make(map[backend.TextureID]*texture),
		format:   gputypes.TextureFormatRGBA8Unorm,
		color:    framekit.Black,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.NameSoftware
}

func (b *Backend) fail(op string) error {
	if err, ok := b.failures[op]; ok {
		return err
	}
	return nil
}

// Open allocates the surface at window size.
func (b *Backend) Open(cfg backend.SurfaceConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fail("Open"); err != nil {
		return err
	}
	if b.open {
		return backend.ErrAlreadyOpen
	}
	w, h := cfg.WindowSize()
	if cfg.Width <= 0 || cfg.Height <= 0 || w <= 0 || h <= 0 {
		return fmt.Errorf("software: surface %dx%d in %dx%d window: %w",
			cfg.Width, cfg.Height, w, h, framekit.ErrInvalidArgument)
	}
	b.cfg = cfg
	b.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	b.frame = image.NewRGBA(b.surface.Rect)
	b.open = true
	return nil
}

// Close releases the surface and every texture.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.textures)
	b.surface = nil
	b.open = false
	return nil
}

// Info describes the surface.
func (b *Backend) Info() backend.SurfaceInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	info := backend.SurfaceInfo{Name: backend.NameSoftware, Format: b.format}
	if b.surface != nil {
		info.Width, info.Height = b.surface.Rect.Dx(), b.surface.Rect.Dy()
	}
	return info
}

// CreateTexture allocates a texture. Indexed textures are not supported.
func (b *Backend) CreateTexture(w, h int, f canvas.Format) (backend.TextureID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fail("CreateTexture"); err != nil {
		return 0, err
	}
	if !b.open {
		return 0, backend.ErrNotOpen
	}
	if !backend.SupportsFormat(f) {
		return 0, fmt.Errorf("%w: %v", backend.ErrUnsupportedFormat, f)
	}
	buf, err := intImage.NewImageBuf(w, h, intImage.FormatRGBA8)
	if err != nil {
		return 0, fmt.Errorf("software: texture %dx%d: %w", w, h, err)
	}
	b.nextID++
	b.textures[b.nextID] = &texture{src: f, buf: buf}
	return b.nextID, nil
}

// UpdateTexture converts pixels into the texture.
func (b *Backend) UpdateTexture(id backend.TextureID, pixels []byte, stride int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fail("UpdateTexture"); err != nil {
		return err
	}
	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownTexture, id)
	}
	w, h := t.buf.Width(), t.buf.Height()
	if err := backend.UnpackRGBA(t.buf.Data(), pixels, w, h, stride, t.src, false); err != nil {
		return fmt.Errorf("software: update texture %d: %w", id, err)
	}
	return nil
}

// DestroyTexture releases a texture.
func (b *Backend) DestroyTexture(id backend.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, id)
}

// TextureCount returns the number of live textures.
func (b *Backend) TextureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

// SetBlendMode sets the blend mode for FillRect and Copy.
func (b *Backend) SetBlendMode(m backend.BlendMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("SetBlendMode"); err != nil {
		return err
	}
	b.blend = m
	return nil
}

// SetDrawColor sets the color for Clear and FillRect.
func (b *Backend) SetDrawColor(c framekit.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("SetDrawColor"); err != nil {
		return err
	}
	b.color = c
	return nil
}

// Clear fills the surface with the draw color, ignoring the blend mode.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("Clear"); err != nil {
		return err
	}
	if !b.open {
		return backend.ErrNotOpen
	}
	draw.Draw(b.surface, b.surface.Rect, image.NewUniform(nrgba(b.color)), image.Point{}, draw.Src)
	return nil
}

// FillRect fills r with the draw color.
func (b *Backend) FillRect(r *framekit.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("FillRect"); err != nil {
		return err
	}
	if !b.open {
		return backend.ErrNotOpen
	}
	dst := b.toWindow(r)
	draw.Draw(b.surface, dst, image.NewUniform(nrgba(b.color)), image.Point{}, b.op())
	return nil
}

// Copy scales a texture region onto the surface.
func (b *Backend) Copy(id backend.TextureID, src, dst *framekit.Rect, alpha uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("Copy"); err != nil {
		return err
	}
	if !b.open {
		return backend.ErrNotOpen
	}
	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownTexture, id)
	}
	if alpha == 0 {
		return nil
	}

	img := t.image()
	sr := img.Rect
	if src != nil {
		sr = rectangle(*src).Intersect(img.Rect)
	}
	dr := b.toWindow(dst)
	if sr.Empty() || dr.Empty() {
		return nil
	}

	var opts *xdraw.Options
	if alpha < 255 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: alpha})}
	}
	b.interpolator().Scale(b.surface, dr, img, sr, b.op(), opts)
	return nil
}

// Present snapshots the surface into the current frame.
func (b *Backend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("Present"); err != nil {
		return err
	}
	if !b.open {
		return backend.ErrNotOpen
	}
	copy(b.frame.Pix, b.surface.Pix)
	b.frames++
	if b.hook != nil {
		b.hook(b.frame)
	}
	return nil
}

// Frame returns a copy of the last presented frame, or nil before the
// first Present.
func (b *Backend) Frame() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frame == nil || b.frames == 0 {
		return nil
	}
	out := image.NewRGBA(b.frame.Rect)
	copy(out.Pix, b.frame.Pix)
	return out
}

// Frames returns the number of presented frames.
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

func (b *Backend) interpolator() xdraw.Interpolator {
	if b.cfg.Smooth {
		return xdraw.BiLinear
	}
	return xdraw.NearestNeighbor
}

func (b *Backend) op() draw.Op {
	if b.blend == backend.BlendAlpha {
		return draw.Over
	}
	return draw.Src
}

// toWindow maps a logical rectangle to surface pixels. Nil selects the
// whole surface.
func (b *Backend) toWindow(r *framekit.Rect) image.Rectangle {
	bounds := b.surface.Rect
	if r == nil {
		return bounds
	}
	ww, wh := bounds.Dx(), bounds.Dy()
	lw, lh := b.cfg.Width, b.cfg.Height
	end := r.Max()
	return image.Rect(
		r.Corner.X*ww/lw, r.Corner.Y*wh/lh,
		end.X*ww/lw, end.Y*wh/lh,
	).Intersect(bounds)
}

func rectangle(r framekit.Rect) image.Rectangle {
	end := r.Max()
	return image.Rect(r.Corner.X, r.Corner.Y, end.X, end.Y)
}

func nrgba(c framekit.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
