//go:build !headless

// Package ebiten provides a windowed backend built on ebiten.
//
// Calls between Clear and Present are recorded into a display list. Present
// publishes the list and the ebiten Draw callback replays it onto the screen
// image. Texture pixels are converted on UpdateTexture and written to GPU
// images lazily inside Draw, the only place ebiten images are touched.
//
// Ebiten owns the main loop, so applications drive frames through Run:
//
//	b := ebiten.New()
//	_ = b.Open(cfg)
//	err := b.Run(func() error {
//		engine.RenderFrame(opts)
//		return nil
//	})
//
// The backend registers itself as "ebiten" on import. Build with the
// headless tag to leave it out.
package ebiten

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/canvas"
)

// init registers the ebiten backend on package import.
func init() {
	backend.Register(backend.NameEbiten, func() backend.Backend {
		return New()
	})
}

type texture struct {
	w, h   int
	format canvas.Format
	pix    []byte // premultiplied RGBA, tightly packed
	dirty  bool
	img    *ebiten.Image
}

type opKind uint8

const (
	opClear opKind = iota
	opFill
	opCopy
)

// op is one recorded drawing call. Rectangles are in logical coordinates
// and are mapped to window pixels on replay; whole marks a nil rectangle
// argument.
type op struct {
	kind      opKind
	tex       backend.TextureID
	src, dst  image.Rectangle
	wholeSrc  bool
	wholeDst  bool
	color     framekit.Color
	alpha     uint8
	blendMode backend.BlendMode
}

// Backend is the ebiten backend.
type Backend struct {
	mu sync.Mutex

	open bool
	cfg  backend.SurfaceConfig

	textures map[backend.TextureID]*texture
	nextID   backend.TextureID

	blend backend.BlendMode
	color framekit.Color

	pending []op // recorded since the last Present
	shown   []op // replayed by Draw
	frames  uint64

	pixel *ebiten.Image // 1×1 white, for fills
	frame func() error
	err   error
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Runner  = (*Backend)(nil)
)

// New creates an unopened ebiten backend.
func New() *Backend {
	return &Backend{
		textures: make(map[backend.TextureID]*texture),
		color:    framekit.Black,
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.NameEbiten
}

// Open records the surface configuration. The window itself is created
// by Run.
func (b *Backend) Open(cfg backend.SurfaceConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		return backend.ErrAlreadyOpen
	}
	w, h := cfg.WindowSize()
	if cfg.Width <= 0 || cfg.Height <= 0 || w <= 0 || h <= 0 {
		return fmt.Errorf("ebiten: surface %dx%d in %dx%d window: %w",
			cfg.Width, cfg.Height, w, h, framekit.ErrInvalidArgument)
	}
	b.cfg = cfg
	b.open = true
	return nil
}

// Close releases every texture. The window stays until Run returns.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.textures {
		if t.img != nil {
			t.img.Deallocate()
		}
		delete(b.textures, id)
	}
	b.pending, b.shown = nil, nil
	b.open = false
	return nil
}

// Info describes the surface.
func (b *Backend) Info() backend.SurfaceInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	info := backend.SurfaceInfo{Name: backend.NameEbiten, Format: gputypes.TextureFormatRGBA8Unorm}
	if b.open {
		info.Width, info.Height = b.cfg.WindowSize()
	}
	return info
}

// CreateTexture reserves a texture. The GPU image is allocated on first
// draw.
func (b *Backend) CreateTexture(w, h int, f canvas.Format) (backend.TextureID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return 0, backend.ErrNotOpen
	}
	if !backend.SupportsFormat(f) {
		return 0, fmt.Errorf("%w: %v", backend.ErrUnsupportedFormat, f)
	}
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("ebiten: texture %dx%d: %w", w, h, framekit.ErrInvalidArgument)
	}
	b.nextID++
	b.textures[b.nextID] = &texture{w: w, h: h, format: f, pix: make([]byte, w*h*4)}
	return b.nextID, nil
}

// UpdateTexture converts pixels to premultiplied RGBA for the next Draw.
func (b *Backend) UpdateTexture(id backend.TextureID, pixels []byte, stride int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownTexture, id)
	}
	if err := backend.UnpackRGBA(t.pix, pixels, t.w, t.h, stride, t.format, true); err != nil {
		return fmt.Errorf("ebiten: update texture %d: %w", id, err)
	}
	t.dirty = true
	return nil
}

// DestroyTexture releases a texture.
func (b *Backend) DestroyTexture(id backend.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.textures[id]; ok {
		if t.img != nil {
			t.img.Deallocate()
		}
		delete(b.textures, id)
	}
}

// SetBlendMode sets the blend mode for FillRect and Copy.
func (b *Backend) SetBlendMode(m backend.BlendMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return backend.ErrNotOpen
	}
	b.blend = m
	return nil
}

// SetDrawColor sets the color for Clear and FillRect.
func (b *Backend) SetDrawColor(c framekit.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return backend.ErrNotOpen
	}
	b.color = c
	return nil
}

// Clear starts a new display list filled with the draw color.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return backend.ErrNotOpen
	}
	b.pending = append(b.pending[:0], op{kind: opClear, color: b.color})
	return nil
}

// FillRect records a filled rectangle.
func (b *Backend) FillRect(r *framekit.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return backend.ErrNotOpen
	}
	o := op{kind: opFill, color: b.color, blendMode: b.blend, wholeDst: r == nil}
	if r != nil {
		o.dst = rectangle(*r)
	}
	b.pending = append(b.pending, o)
	return nil
}

// Copy records a texture blit.
func (b *Backend) Copy(id backend.TextureID, src, dst *framekit.Rect, alpha uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return backend.ErrNotOpen
	}
	if _, ok := b.textures[id]; !ok {
		return fmt.Errorf("%w: %d", backend.ErrUnknownTexture, id)
	}
	o := op{kind: opCopy, tex: id, alpha: alpha, blendMode: b.blend, wholeSrc: src == nil, wholeDst: dst == nil}
	if src != nil {
		o.src = rectangle(*src)
	}
	if dst != nil {
		o.dst = rectangle(*dst)
	}
	b.pending = append(b.pending, o)
	return nil
}

// Present publishes the display list to Draw.
func (b *Backend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return backend.ErrNotOpen
	}
	b.shown = append(b.shown[:0], b.pending...)
	b.pending = b.pending[:0]
	b.frames++
	return nil
}

// Frames returns the number of presented frames.
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// Run opens the window and calls frame from every ebiten update until
// frame fails or the window closes. It must be called from the main
// goroutine.
func (b *Backend) Run(frame func() error) error {
	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return backend.ErrNotOpen
	}
	cfg := b.cfg
	b.frame = frame
	b.err = nil
	b.mu.Unlock()

	w, h := cfg.WindowSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetFullscreen(cfg.Fullscreen)

	framekit.Logger().Info("ebiten window opened", "window", fmt.Sprintf("%dx%d", w, h))
	if err := ebiten.RunGame(&game{b: b}); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if errors.Is(b.err, backend.ErrStop) {
		return nil
	}
	return b.err
}

// game adapts Backend to ebiten.Game.
type game struct {
	b *Backend
}

func (g *game) Update() error {
	g.b.mu.Lock()
	frame := g.b.frame
	g.b.mu.Unlock()

	if frame == nil {
		return nil
	}
	if err := frame(); err != nil {
		g.b.mu.Lock()
		g.b.err = err
		g.b.mu.Unlock()
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	b := g.b
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.textures {
		if !t.dirty {
			continue
		}
		if t.img == nil {
			t.img = ebiten.NewImage(t.w, t.h)
		}
		t.img.WritePixels(t.pix)
		t.dirty = false
	}
	for i := range b.shown {
		b.replay(screen, &b.shown[i])
	}
}

// Layout sizes the screen image to the window. Recorded rectangles are
// scaled up on replay.
func (g *game) Layout(_, _ int) (int, int) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	return g.b.cfg.WindowSize()
}

// replay draws one recorded op. Callers hold b.mu.
func (b *Backend) replay(screen *ebiten.Image, o *op) {
	dst := b.toWindow(o, screen.Bounds())
	if dst.Empty() {
		return
	}

	switch o.kind {
	case opClear:
		screen.Fill(o.color)

	case opFill:
		if b.pixel == nil {
			b.pixel = ebiten.NewImage(1, 1)
			b.pixel.Fill(color.White)
		}
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(float64(dst.Dx()), float64(dst.Dy()))
		opts.GeoM.Translate(float64(dst.Min.X), float64(dst.Min.Y))
		opts.ColorScale.ScaleWithColor(o.color)
		opts.Blend = blend(o.blendMode)
		screen.DrawImage(b.pixel, opts)

	case opCopy:
		t, ok := b.textures[o.tex]
		if !ok || t.img == nil || o.alpha == 0 {
			return
		}
		src := t.img
		if !o.wholeSrc {
			r := o.src.Intersect(t.img.Bounds())
			if r.Empty() {
				return
			}
			src = t.img.SubImage(r).(*ebiten.Image)
		}
		sb := src.Bounds()
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(float64(dst.Dx())/float64(sb.Dx()), float64(dst.Dy())/float64(sb.Dy()))
		opts.GeoM.Translate(float64(dst.Min.X), float64(dst.Min.Y))
		opts.ColorScale.ScaleAlpha(float32(o.alpha) / 255)
		opts.Blend = blend(o.blendMode)
		opts.Filter = ebiten.FilterNearest
		if b.cfg.Smooth {
			opts.Filter = ebiten.FilterLinear
		}
		screen.DrawImage(src, opts)
	}
}

// toWindow maps the logical destination of o to screen pixels.
func (b *Backend) toWindow(o *op, bounds image.Rectangle) image.Rectangle {
	if o.wholeDst {
		return bounds
	}
	ww, wh := bounds.Dx(), bounds.Dy()
	lw, lh := b.cfg.Width, b.cfg.Height
	r := o.dst
	return image.Rect(
		r.Min.X*ww/lw, r.Min.Y*wh/lh,
		r.Max.X*ww/lw, r.Max.Y*wh/lh,
	).Intersect(bounds)
}

func blend(m backend.BlendMode) ebiten.Blend {
	if m == backend.BlendAlpha {
		return ebiten.BlendSourceOver
	}
	return ebiten.BlendCopy
}

func rectangle(r framekit.Rect) image.Rectangle {
	end := r.Max()
	return image.Rect(r.Corner.X, r.Corner.Y, end.X, end.Y)
}
