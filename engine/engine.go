package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/assets"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/compositor"
	"github.com/gogpu/framekit/drawqueue"
	"github.com/gogpu/framekit/fade"
)

// ErrShutdown is returned by Init after Shutdown.
var ErrShutdown = errors.New("engine: shut down")

// Option configures a System.
type Option func(*options)

type options struct {
	compositor []compositor.Option
	store      *assets.Store
	fade       *fade.Engine
}

// WithBackend presents through b instead of the backend named in the
// video config.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.compositor = append(o.compositor, compositor.WithBackend(b))
	}
}

// WithScalerWorkers sets the software scaler's worker count.
func WithScalerWorkers(n int) Option {
	return func(o *options) {
		o.compositor = append(o.compositor, compositor.WithScalerWorkers(n))
	}
}

// WithStore uses s for asset lookups instead of a new store.
func WithStore(s *assets.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithFade uses e for fades and colormaps instead of a new engine.
func WithFade(e *fade.Engine) Option {
	return func(o *options) {
		o.fade = e
	}
}

// FrameOptions describes the transient overlays of one frame.
type FrameOptions struct {
	// Transition is the opacity of the TRANSITION screen drawn over MAIN.
	// Zero means no transition.
	Transition uint8

	// TransitionClip limits the transition layer. Nil covers the screen.
	TransitionClip *framekit.Rect

	// SystemBox is a MAIN region redrawn above the fade overlay, for UI
	// that must stay visible while the screen fades.
	SystemBox *framekit.Rect

	// Force composites even when nothing changed since the last frame.
	Force bool
}

// Stats counts engine work.
type Stats struct {
	Frames   uint64 // composited frames
	Skipped  uint64 // frames with nothing to redraw
	Commands uint64 // commands dispatched

	Queue      drawqueue.Stats
	Compositor compositor.FrameStats
	Glyphs     assets.CacheStats
}

// System owns the rendering pipeline.
type System struct {
	cfg Config

	queue *drawqueue.Queue
	comp  *compositor.Compositor
	disp  *drawqueue.Dispatcher
	store *assets.Store
	fade  *fade.Engine

	mu       sync.Mutex
	started  bool
	shutdown bool

	// Render goroutine state.
	presented      bool
	lastFade       int
	lastTransition uint8
	frames         uint64
	skipped        uint64
	commands       uint64
}

// New builds a System. Nothing is opened until Init.
func New(cfg Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = assets.NewStore()
	}
	if o.fade == nil {
		o.fade = fade.New()
	}
	o.store.SetPaletteSource(o.fade)

	comp := compositor.New(o.compositor...)
	disp := drawqueue.NewDispatcher(comp, o.store)
	q, err := drawqueue.New(cfg.Queue, drawqueue.WithExecutor(disp))
	if err != nil {
		return nil, err
	}
	return &System{
		cfg:   cfg,
		queue: q,
		comp:  comp,
		disp:  disp,
		store: o.store,
		fade:  o.fade,
	}, nil
}

// Init initializes the compositor. It may be retried after a failure.
func (s *System) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return ErrShutdown
	}
	if err := s.comp.Initialize(s.cfg.Video); err != nil {
		return err
	}
	s.started = true
	framekit.Logger().Info("engine initialized",
		"backend", s.comp.Backend().Name(),
		"queue", s.cfg.Queue.MaxSize)
	return nil
}

// Shutdown closes the queue, releasing blocked producers, and tears down
// the compositor. Later calls do nothing.
func (s *System) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return
	}
	s.shutdown = true
	s.queue.Close()
	s.comp.Teardown()
	if s.started {
		framekit.Logger().Info("engine shut down", "frames", s.frames)
	}
}

// Queue returns the draw queue producers push to.
func (s *System) Queue() *drawqueue.Queue { return s.queue }

// Compositor returns the frame compositor.
func (s *System) Compositor() *compositor.Compositor { return s.comp }

// Assets returns the asset store commands resolve against.
func (s *System) Assets() *assets.Store { return s.store }

// Fade returns the fade and colormap engine.
func (s *System) Fade() *fade.Engine { return s.fade }

// RenderFrame dispatches queued commands and composites one frame:
// MAIN, then the transition layer, the fade overlay and the system box,
// then present. The frame is skipped when no command ran and neither
// the fade nor the transition has changed since the last frame. Palette
// transforms advance once per call. It returns the number of commands
// dispatched.
//
// RenderFrame must be called from the render goroutine only.
func (s *System) RenderFrame(opts FrameOptions) int {
	n := s.queue.Flush()
	s.commands += uint64(n) // #nosec G115 -- n is never negative

	amount := s.fade.Amount()
	idle := s.presented && n == 0 && !opts.Force &&
		amount == fade.NormalIntensity && s.lastFade == fade.NormalIntensity &&
		opts.Transition == 0 && s.lastTransition == 0
	if idle {
		s.skipped++
		s.fade.StepTransforms()
		return n
	}

	c := s.comp
	c.Preprocess()
	c.Layer(framekit.ScreenMain, 0xFF, nil)
	if opts.Transition != 0 {
		c.Layer(framekit.ScreenTransition, opts.Transition, opts.TransitionClip)
	}
	c.Fade(s.fade, nil)
	if opts.SystemBox != nil {
		c.Layer(framekit.ScreenMain, 0xFF, opts.SystemBox)
	}
	c.Postprocess()

	s.presented = true
	s.lastFade = amount
	s.lastTransition = opts.Transition
	s.frames++
	s.fade.StepTransforms()
	return n
}

// Stats returns the engine, queue, compositor and glyph cache counters. Engine
// counters are only consistent when read from the render goroutine.
func (s *System) Stats() Stats {
	return Stats{
		Frames:     s.frames,
		Skipped:    s.skipped,
		Commands:   s.commands,
		Queue:      s.queue.Stats(),
		Compositor: s.comp.Stats(),
		Glyphs:     s.store.GlyphCacheStats(),
	}
}

// eventPump is implemented by backends that need their window events
// drained by the render loop.
type eventPump interface {
	PumpEvents() (quit bool)
}

// Run renders frames until ctx is done or the window closes. frame, when
// non-nil, supplies the options of each frame. Backends implementing
// backend.Runner own the loop; otherwise frames are paced by
// Config.FrameInterval on the calling goroutine.
func (s *System) Run(ctx context.Context, frame func() FrameOptions) error {
	if s.comp.State() != compositor.StateInitialized {
		return framekit.ErrNotInitialized
	}
	next := func() FrameOptions {
		if frame == nil {
			return FrameOptions{}
		}
		return frame()
	}

	be := s.comp.Backend()
	if r, ok := be.(backend.Runner); ok {
		return r.Run(func() error {
			if err := ctx.Err(); err != nil {
				return backend.ErrStop
			}
			s.RenderFrame(next())
			return nil
		})
	}

	interval := s.cfg.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pump, _ := be.(eventPump)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if pump != nil && pump.PumpEvents() {
			return nil
		}
		s.RenderFrame(next())
		select {
		case <-ctx.Done():
			return nil
		case <-s.queue.Done():
			return nil
		case <-ticker.C:
		}
	}
}
