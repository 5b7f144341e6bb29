package compositor

import (
	"fmt"
	"sync"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/canvas"
	"github.com/gogpu/framekit/drawqueue"
	"github.com/gogpu/framekit/scaler"
)

// State is the compositor lifecycle state.
type State uint8

const (
	// StateUninitialized is the state before Initialize and after Teardown.
	StateUninitialized State = iota
	// StateInitialized means every resource is allocated.
	StateInitialized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	}
	return fmt.Sprintf("State(%d)", s)
}

// Phase is the position within the current frame.
type Phase uint8

const (
	// PhaseIdle means no frame has been started.
	PhaseIdle Phase = iota
	// PhaseCleared follows Preprocess.
	PhaseCleared
	// PhaseLayered follows any Layer or ColorOverlay.
	PhaseLayered
	// PhasePresented follows Postprocess.
	PhasePresented
)

var phaseNames = [...]string{
	PhaseIdle:      "Idle",
	PhaseCleared:   "Cleared",
	PhaseLayered:   "Layered",
	PhasePresented: "Presented",
}

// String returns the phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// FrameStats counts compositor work since Initialize.
type FrameStats struct {
	Frames   uint64 // successful presents
	Layers   uint64 // completed Layer steps
	Overlays uint64 // completed ColorOverlay steps
	Scaled   uint64 // Layer steps that ran the software scaler
	Failures uint64 // aborted steps
}

// FadeSource supplies the per-frame fade state.
type FadeSource interface {
	// Amount returns the fade intensity; 255 means no fade.
	Amount() int

	// OverlayColor returns the overlay color for the current amount and
	// whether an overlay is needed.
	OverlayColor() (framekit.Color, bool)
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithBackend uses b instead of the backend named by Config.Backend.
// The compositor opens and closes b but never replaces it.
func WithBackend(b backend.Backend) Option {
	return func(c *Compositor) {
		c.fixed = b
	}
}

// WithScalerWorkers sets the software scaler's worker count.
// Zero or one scales on the calling goroutine.
func WithScalerWorkers(n int) Option {
	return func(c *Compositor) {
		c.workers = n
	}
}

// Compositor owns the framebuffers and presents them through a backend.
//
// Frame steps and Borrow are meant for the render goroutine; the mutex only
// protects accessors used from elsewhere.
type Compositor struct {
	mu sync.Mutex

	fixed   backend.Backend
	workers int

	cfg   Config
	state State
	phase Phase
	stats FrameStats

	be       backend.Backend
	fb       [framekit.NumScreens]*canvas.Canvas
	tex      [framekit.NumScreens]backend.TextureID
	scaler   *scaler.Scaler
	factor   int
	conv     [framekit.NumScreens][]byte // framebuffer in scaler order
	scaled   [framekit.NumScreens][]byte
	scaleTex [framekit.NumScreens]backend.TextureID

	warn framekit.OnceLog
}

var _ drawqueue.Target = (*Compositor)(nil)

// New creates an uninitialized compositor.
func New(opts ...Option) *Compositor {
	c := &Compositor{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Initialize opens the backend and allocates the framebuffers, their
// textures and, when the flags select a software scaler, the scaled
// buffers and textures. A failure releases everything acquired so far and
// returns an error wrapping framekit.ErrInitFailure; a later Initialize
// starts from scratch.
func (c *Compositor) Initialize(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateInitialized {
		return ErrAlreadyInitialized
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", framekit.ErrInitFailure, err)
	}
	if err := c.initLocked(cfg); err != nil {
		framekit.Logger().Warn("compositor initialize failed", "err", err)
		return err
	}

	framekit.Logger().Info("compositor initialized",
		"backend", c.be.Name(),
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"flags", cfg.Flags.String())
	return nil
}

func (c *Compositor) initLocked(cfg Config) (err error) {
	defer func() {
		if err != nil {
			c.releaseLocked()
			err = fmt.Errorf("%w: %w", framekit.ErrInitFailure, err)
		}
	}()

	be := c.fixed
	if be == nil {
		if cfg.Backend == "" {
			if be = backend.Default(); be == nil {
				return backend.ErrBackendNotAvailable
			}
		} else if be, err = backend.NewBackend(cfg.Backend); err != nil {
			return err
		}
	}
	if err = be.Open(cfg.surface()); err != nil {
		return backendErr("Open", err)
	}
	c.be = be

	for s := range c.fb {
		if c.fb[s], err = canvas.New(cfg.Width, cfg.Height, canvas.RGBX8888); err != nil {
			return fmt.Errorf("framebuffer %s: %w", framekit.Screen(s), err)
		}
	}
	for s := range c.tex {
		if c.tex[s], err = be.CreateTexture(cfg.Width, cfg.Height, canvas.RGBX8888); err != nil {
			return backendErr("CreateTexture", err)
		}
	}

	c.factor = 1
	if kind, f, ok := cfg.Flags.SoftScaler(); ok {
		var opts []scaler.Option
		if c.workers > 1 {
			opts = append(opts, scaler.WithWorkers(c.workers))
		}
		if c.scaler, err = scaler.New(kind, f, opts...); err != nil {
			return err
		}
		sw, sh := c.scaler.OutputSize(cfg.Width, cfg.Height)
		for s := range c.scaled {
			c.conv[s] = make([]byte, cfg.Width*cfg.Height*4)
			c.scaled[s] = make([]byte, sw*sh*4)
		}
		for s := range c.scaleTex {
			if c.scaleTex[s], err = be.CreateTexture(sw, sh, canvas.RGBX8888); err != nil {
				return backendErr("CreateTexture", err)
			}
		}
		c.factor = f
		c.scaler.LogActive()
	}

	c.cfg = cfg
	c.state = StateInitialized
	c.phase = PhaseIdle
	c.stats = FrameStats{}
	return nil
}

// releaseLocked frees resources in reverse acquisition order. It handles
// partially initialized state.
func (c *Compositor) releaseLocked() {
	for s := len(c.scaleTex) - 1; s >= 0; s-- {
		if c.scaleTex[s] != 0 {
			c.be.DestroyTexture(c.scaleTex[s])
			c.scaleTex[s] = 0
		}
	}
	if c.scaler != nil {
		c.scaler.Close()
		c.scaler = nil
	}
	for s := len(c.scaled) - 1; s >= 0; s-- {
		c.scaled[s], c.conv[s] = nil, nil
	}
	for s := len(c.tex) - 1; s >= 0; s-- {
		if c.tex[s] != 0 {
			c.be.DestroyTexture(c.tex[s])
			c.tex[s] = 0
		}
	}
	for s := len(c.fb) - 1; s >= 0; s-- {
		c.fb[s] = nil
	}
	if c.be != nil {
		if err := c.be.Close(); err != nil {
			framekit.Logger().Debug("backend close failed", "err", err)
		}
		c.be = nil
	}
	c.factor = 0
	c.state = StateUninitialized
	c.phase = PhaseIdle
}

// Teardown releases every resource. It is safe to call at any time,
// including before Initialize and more than once.
func (c *Compositor) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return
	}
	c.releaseLocked()
	framekit.Logger().Info("compositor torn down")
}

// Reinit tears down and initializes again with the current configuration,
// keeping the framebuffer contents.
func (c *Compositor) Reinit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return framekit.ErrNotInitialized
	}
	var saved [framekit.NumScreens]*canvas.Canvas
	for s, fb := range c.fb {
		saved[s] = fb.Clone()
	}
	cfg := c.cfg
	c.releaseLocked()
	if err := c.initLocked(cfg); err != nil {
		framekit.Logger().Warn("compositor reinit failed", "err", err)
		return err
	}
	for s, fb := range c.fb {
		if err := fb.ReplacePixels(saved[s]); err != nil {
			return err
		}
	}
	framekit.Logger().Info("compositor reinitialized", "backend", c.be.Name())
	return nil
}

// ReinitVideo implements drawqueue.Target.
func (c *Compositor) ReinitVideo() error {
	return c.Reinit()
}

// -----------------------------------------------------------------------------
// Frame steps
// -----------------------------------------------------------------------------

// fail records an aborted step and logs it once per op.
func (c *Compositor) fail(op string, err error) {
	c.stats.Failures++
	c.warn.Warn("compositor."+op, "compositor step failed", "op", op, "err", backendErr(op, err))
}

// Preprocess resets blending and clears the target to black.
func (c *Compositor) Preprocess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return
	}
	c.phase = PhaseCleared
	if err := c.be.SetBlendMode(backend.BlendNone); err != nil {
		c.fail("SetBlendMode", err)
		return
	}
	if err := c.be.SetDrawColor(framekit.Black); err != nil {
		c.fail("SetDrawColor", err)
		return
	}
	if err := c.be.Clear(); err != nil {
		c.fail("Clear", err)
	}
}

// Layer uploads screen s and composites it onto the target with the given
// alpha. A non-nil clip limits the layer to that framebuffer region.
// Only MAIN and TRANSITION can be layered; other screens are ignored.
func (c *Compositor) Layer(s framekit.Screen, alpha uint8, clip *framekit.Rect) {
	if s != framekit.ScreenMain && s != framekit.ScreenTransition {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return
	}
	c.phase = PhaseLayered

	tex, ok := c.upload(s)
	if !ok {
		return
	}

	mode := backend.BlendNone
	if alpha < 0xFF {
		mode = backend.BlendAlpha
	}
	if err := c.be.SetBlendMode(mode); err != nil {
		c.fail("SetBlendMode", err)
		return
	}

	var src *framekit.Rect
	if clip != nil {
		r := framekit.RectXYWH(
			clip.Corner.X*c.factor, clip.Corner.Y*c.factor,
			clip.Extent.W*c.factor, clip.Extent.H*c.factor)
		src = &r
	}
	if err := c.be.Copy(tex, src, clip, alpha); err != nil {
		c.fail("Copy", err)
		return
	}
	c.stats.Layers++
}

// upload transfers the whole framebuffer, through the scaler when one is
// configured, and returns the texture holding the result.
func (c *Compositor) upload(s framekit.Screen) (backend.TextureID, bool) {
	fb := c.fb[s]
	if c.scaler == nil {
		if err := c.be.UpdateTexture(c.tex[s], fb.Bytes(), fb.Stride()); err != nil {
			c.fail("UpdateTexture", err)
			return 0, false
		}
		return c.tex[s], true
	}

	w, h := fb.Width(), fb.Height()
	row := w * 4
	pix, stride := fb.Bytes(), fb.Stride()
	for y := range h {
		scaler.ToScalerOrder(c.conv[s][y*row:(y+1)*row], pix[y*stride:y*stride+row])
	}
	if err := c.scaler.Scale(c.scaled[s], c.conv[s], w, h); err != nil {
		c.fail("Scale", err)
		return 0, false
	}
	scaler.FromScalerOrder(c.scaled[s], c.scaled[s])
	if err := c.be.UpdateTexture(c.scaleTex[s], c.scaled[s], row*c.factor); err != nil {
		c.fail("UpdateTexture", err)
		return 0, false
	}
	c.stats.Scaled++
	return c.scaleTex[s], true
}

// ColorOverlay fills clip, or the whole target when clip is nil, with col
// blended by its alpha.
func (c *Compositor) ColorOverlay(col framekit.Color, clip *framekit.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return
	}
	c.phase = PhaseLayered
	if err := c.be.SetBlendMode(backend.BlendAlpha); err != nil {
		c.fail("SetBlendMode", err)
		return
	}
	if err := c.be.SetDrawColor(col); err != nil {
		c.fail("SetDrawColor", err)
		return
	}
	if err := c.be.FillRect(clip); err != nil {
		c.fail("FillRect", err)
		return
	}
	c.stats.Overlays++
}

// Fade applies the overlay f reports, if any.
func (c *Compositor) Fade(f FadeSource, clip *framekit.Rect) {
	if f == nil {
		return
	}
	if col, ok := f.OverlayColor(); ok {
		c.ColorOverlay(col, clip)
	}
}

// Postprocess presents the target. It performs no upload or blending.
func (c *Compositor) Postprocess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return
	}
	c.phase = PhasePresented
	if err := c.be.Present(); err != nil {
		c.fail("Present", err)
		return
	}
	c.stats.Frames++
}

// -----------------------------------------------------------------------------
// Framebuffer access
// -----------------------------------------------------------------------------

// Borrow calls fn with the canvas of screen s. The canvas must not be kept
// after fn returns, and fn must not call back into the compositor. Any
// scissor fn sets is cleared afterwards.
func (c *Compositor) Borrow(s framekit.Screen, fn func(cv *canvas.Canvas)) error {
	if !s.Valid() {
		return fmt.Errorf("%w: screen %d", framekit.ErrInvalidArgument, int(s))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return framekit.ErrNotInitialized
	}
	cv := c.fb[s]
	defer cv.ClearScissor()
	fn(cv)
	return nil
}

// BorrowPair calls fn with the canvases of dst and src, which are the same
// canvas when dst == src.
func (c *Compositor) BorrowPair(dst, src framekit.Screen, fn func(dst, src *canvas.Canvas)) error {
	if !dst.Valid() || !src.Valid() {
		return fmt.Errorf("%w: screens %d, %d", framekit.ErrInvalidArgument, int(dst), int(src))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return framekit.ErrNotInitialized
	}
	d, sv := c.fb[dst], c.fb[src]
	defer d.ClearScissor()
	fn(d, sv)
	return nil
}

// Framebuffer returns a copy of screen s, or nil when s is invalid or the
// compositor is not initialized.
func (c *Compositor) Framebuffer(s framekit.Screen) *canvas.Canvas {
	if !s.Valid() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return nil
	}
	return c.fb[s].Clone()
}

// ScaledBuffer returns a copy of the last scaled output of screen s in
// framebuffer byte order, or nil when no scaler is configured.
func (c *Compositor) ScaledBuffer(s framekit.Screen) []byte {
	if !s.Valid() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scaled[s] == nil {
		return nil
	}
	return append([]byte(nil), c.scaled[s]...)
}

// ScaleFactor returns the software scale factor: 1 without a scaler and 0
// before Initialize.
func (c *Compositor) ScaleFactor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.factor
}

// Stats returns the frame counters.
func (c *Compositor) Stats() FrameStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Phase returns the position in the current frame.
func (c *Compositor) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns the lifecycle state.
func (c *Compositor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Backend returns the open backend, or nil when not initialized.
func (c *Compositor) Backend() backend.Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.be
}

// Config returns the configuration of the last successful Initialize.
func (c *Compositor) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}
