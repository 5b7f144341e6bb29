// Package fade implements the screen fade and colormap engine.
//
// The fade amount runs from NoIntensity (black) through NormalIntensity
// (unchanged) to FullIntensity (white). The compositor reads it once per
// frame through Amount and OverlayColor. Colormaps are 256-color palettes
// used by indexed images; Transform blends a colormap toward new colors
// over time, advanced by StepTransforms once per frame.
package fade

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/assets"
)

// Fade intensities.
const (
	NoIntensity     = 0
	NormalIntensity = 255
	FullIntensity   = 510
)

const (
	// MaxColorMaps is the number of colormap slots.
	MaxColorMaps = 250

	// PaletteSize is the number of colors in a colormap.
	PaletteSize = 256

	// MaxTransforms is the number of colormap transforms that can run at
	// once.
	MaxTransforms = 16

	// progressScale is the fixed-point unit of fade and transform progress.
	progressScale = 0x10000
)

var (
	// ErrColorMapRange is returned for colormap indices outside
	// [0, MaxColorMaps).
	ErrColorMapRange = fmt.Errorf("fade: colormap index out of range: %w", framekit.ErrInvalidArgument)

	// ErrPaletteSize is returned when color data does not hold whole
	// 256-color palettes.
	ErrPaletteSize = fmt.Errorf("fade: palette size mismatch: %w", framekit.ErrInvalidArgument)

	// ErrNoColorMap is returned when transforming a colormap that was never
	// set.
	ErrNoColorMap = errors.New("fade: colormap not set")

	// ErrNoTransformSlot is returned when MaxTransforms transforms are
	// already running.
	ErrNoTransformSlot = errors.New("fade: no free transform slot")
)

// Type selects the target intensity of a fade.
type Type uint8

const (
	// ToBlack fades to NoIntensity.
	ToBlack Type = iota
	// ToColor fades back to NormalIntensity.
	ToColor
	// ToWhite fades to FullIntensity.
	ToWhite
)

// String returns the fade type name.
func (t Type) String() string {
	switch t {
	case ToBlack:
		return "ToBlack"
	case ToColor:
		return "ToColor"
	case ToWhite:
		return "ToWhite"
	}
	return fmt.Sprintf("Type(%d)", t)
}

func (t Type) target() int {
	switch t {
	case ToBlack:
		return NoIntensity
	case ToWhite:
		return FullIntensity
	}
	return NormalIntensity
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

type fadeState struct {
	current  int
	target   int
	start    time.Time
	duration time.Duration
	active   bool
}

// amount interpolates from current toward target.
func (f *fadeState) amount(now time.Time) int {
	if !f.active {
		return f.current
	}
	elapsed := now.Sub(f.start)
	if elapsed >= f.duration {
		return f.target
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return f.current + int(int64(f.target-f.current)*progress(elapsed, f.duration)/progressScale)
}

func (f *fadeState) finish() {
	if f.active {
		f.current = f.target
		f.active = false
	}
}

type transform struct {
	index int // -1 when the slot is free
	from  []framekit.Color
	to    []framekit.Color
	start time.Time
	end   time.Time
}

// Engine holds the fade state and the colormaps. It is safe for
// concurrent use.
type Engine struct {
	mu  sync.Mutex
	now func() time.Time

	fade    fadeState
	maps    [MaxColorMaps][]framekit.Color
	xforms  [MaxTransforms]transform
	highest int
}

// New returns an engine at NormalIntensity with no colormaps.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:  time.Now,
		fade: fadeState{current: NormalIntensity, target: NormalIntensity},
	}
	for i := range e.xforms {
		e.xforms[i].index = -1
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ---------------------------------------------------------------------------
// Fades
// ---------------------------------------------------------------------------

// FadeScreen starts a fade toward t lasting d and returns when it will
// complete. A running fade is finished first. A zero duration applies the
// target immediately.
func (e *Engine) FadeScreen(t Type, d time.Duration) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.fade.finish()
	e.fade.target = t.target()
	if d <= 0 {
		e.fade.current = e.fade.target
		return now
	}
	e.fade.start = now
	e.fade.duration = d
	e.fade.active = true
	return now.Add(d)
}

// FinishFade jumps a running fade to its target.
func (e *Engine) FinishFade() {
	e.mu.Lock()
	e.fade.finish()
	e.mu.Unlock()
}

// Amount returns the current fade intensity.
func (e *Engine) Amount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fade.amount(e.now())
}

// Fading reports whether a fade is in progress.
func (e *Engine) Fading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fade.active && e.now().Sub(e.fade.start) < e.fade.duration
}

// OverlayColor returns the color the compositor lays over the frame for
// the current fade amount. It reports false at NormalIntensity.
func (e *Engine) OverlayColor() (framekit.Color, bool) {
	return Overlay(e.Amount())
}

// Overlay maps a fade amount to its overlay color: black with alpha
// 255-amount below NormalIntensity, white with alpha amount-255 above it.
func Overlay(amount int) (framekit.Color, bool) {
	switch {
	case amount < NormalIntensity:
		a := NormalIntensity - max(amount, NoIntensity)
		return framekit.RGBA(0, 0, 0, uint8(a)), true // #nosec G115 -- a is in [1, 255]
	case amount > NormalIntensity:
		a := min(amount, FullIntensity) - NormalIntensity
		return framekit.RGBA(255, 255, 255, uint8(a)), true // #nosec G115 -- a is in [1, 255]
	}
	return framekit.Color{}, false
}

// ---------------------------------------------------------------------------
// Colormaps
// ---------------------------------------------------------------------------

// SetColors replaces colormaps first, first+1, ... with the given
// palettes. Each palette must hold exactly PaletteSize colors.
func (e *Engine) SetColors(first int, palettes ...[]framekit.Color) error {
	if first < 0 || first+len(palettes) > MaxColorMaps {
		return fmt.Errorf("%w: %d..%d", ErrColorMapRange, first, first+len(palettes)-1)
	}
	for i, p := range palettes {
		if len(p) != PaletteSize {
			return fmt.Errorf("%w: colormap %d has %d colors", ErrPaletteSize, first+i, len(p))
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, p := range palettes {
		e.maps[first+i] = append([]framekit.Color(nil), p...)
	}
	return nil
}

// SetColorsRGB loads colormaps first through last from packed RGB
// triplets, PaletteSize of them per colormap. Loaded colors are opaque.
func (e *Engine) SetColorsRGB(first, last int, data []byte) error {
	if first > last || first < 0 || last >= MaxColorMaps {
		return fmt.Errorf("%w: %d..%d", ErrColorMapRange, first, last)
	}
	n := last - first + 1
	if len(data) != n*PaletteSize*3 {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrPaletteSize, n*PaletteSize*3, len(data))
	}
	palettes := make([][]framekit.Color, n)
	for i := range palettes {
		p := make([]framekit.Color, PaletteSize)
		for j := range p {
			o := (i*PaletteSize + j) * 3
			p[j] = framekit.RGB(data[o], data[o+1], data[o+2])
		}
		palettes[i] = p
	}
	return e.SetColors(first, palettes...)
}

// Palette returns colormap ref. The returned slice must not be modified;
// later changes to the colormap replace it rather than write into it.
// Palette implements assets.PaletteSource.
func (e *Engine) Palette(ref assets.ColorMapRef) ([]framekit.Color, bool) {
	if int64(ref) >= MaxColorMaps {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.maps[ref]
	return p, p != nil
}

// ColorMapCount returns one past the highest colormap set.
func (e *Engine) ColorMapCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := MaxColorMaps - 1; i >= 0; i-- {
		if e.maps[i] != nil {
			return i + 1
		}
	}
	return 0
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

// Transform starts blending colormap idx toward target over d and returns
// when it will complete. A transform already running on idx is replaced,
// starting from the colormap's current colors.
func (e *Engine) Transform(idx int, target []framekit.Color, d time.Duration) (time.Time, error) {
	if idx < 0 || idx >= MaxColorMaps {
		return time.Time{}, fmt.Errorf("%w: %d", ErrColorMapRange, idx)
	}
	if len(target) != PaletteSize {
		return time.Time{}, fmt.Errorf("%w: target has %d colors", ErrPaletteSize, len(target))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.maps[idx]
	if from == nil {
		return time.Time{}, fmt.Errorf("%w: %d", ErrNoColorMap, idx)
	}
	slot := -1
	for i := range e.xforms {
		if e.xforms[i].index == idx {
			slot = i
			break
		}
		if slot < 0 && e.xforms[i].index < 0 {
			slot = i
		}
	}
	if slot < 0 {
		return time.Time{}, ErrNoTransformSlot
	}

	now := e.now()
	e.xforms[slot] = transform{
		index: idx,
		from:  from,
		to:    append([]framekit.Color(nil), target...),
		start: now,
		end:   now.Add(max(d, 0)),
	}
	e.highest = max(e.highest, slot+1)
	return now.Add(max(d, 0)), nil
}

// StepTransforms advances every running transform to the current time and
// reports whether any is still running. Transforms that reach their end
// apply their target colors and free their slot.
func (e *Engine) StepTransforms() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	active := false
	for i := range e.highest {
		x := &e.xforms[i]
		if x.index < 0 {
			continue
		}
		if !now.Before(x.end) {
			e.maps[x.index] = x.to
			x.index = -1
			continue
		}
		e.maps[x.index] = blendPalette(x.from, x.to, progress(now.Sub(x.start), x.end.Sub(x.start)))
		active = true
	}
	if !active {
		e.highest = 0
	}
	return active
}

// FinishTransforms applies the target colors of every running transform.
func (e *Engine) FinishTransforms() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.highest {
		x := &e.xforms[i]
		if x.index >= 0 {
			e.maps[x.index] = x.to
			x.index = -1
		}
	}
	e.highest = 0
}

// Flush finishes the running fade and every transform.
func (e *Engine) Flush() {
	e.FinishFade()
	e.FinishTransforms()
}

// progress returns elapsed/total in progressScale units, clamped to
// [0, progressScale].
func progress(elapsed, total time.Duration) int64 {
	if total <= 0 || elapsed >= total {
		return progressScale
	}
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed) * progressScale / int64(total)
}

func blendPalette(from, to []framekit.Color, p int64) []framekit.Color {
	out := make([]framekit.Color, len(to))
	for i := range out {
		a, b := from[i], to[i]
		out[i] = framekit.Color{
			R: lerp(a.R, b.R, p),
			G: lerp(a.G, b.G, p),
			B: lerp(a.B, b.B, p),
			A: lerp(a.A, b.A, p),
		}
	}
	return out
}

func lerp(a, b uint8, p int64) uint8 {
	return uint8(int64(a) + (int64(b)-int64(a))*p/progressScale) // #nosec G115 -- result lies between a and b
}
