package scaler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/internal/parallel"
)

// Kind selects the scaling family.
type Kind uint8

const (
	// HQ is the edge-directed family.
	HQ Kind = iota

	// XBRZ is the pattern-based corner blending family.
	XBRZ
)

var kindNames = [...]string{
	HQ:   "HQ",
	XBRZ: "XBRZ",
}

// String returns the family name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Supported factors.
const (
	MinFactor = 2
	MaxFactor = 4
)

// minBand is the smallest number of source rows handed to one worker.
const minBand = 8

type options struct {
	workers int
}

// Option configures a Scaler.
type Option func(*options)

// WithWorkers processes row bands on n goroutines. Zero or negative n uses
// GOMAXPROCS; 1 keeps scaling on the calling goroutine, which is also the
// default.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Scaler is a configured scaling pipeline, selected once and reused for
// every frame.
//
// Thread safety: Scale may be called concurrently on distinct buffers.
type Scaler struct {
	kind   Kind
	factor int
	block  func(dst []byte, dstW, ox, oy, f int, n *neighbourhood)
	pool   *parallel.WorkerPool

	logOnce sync.Once
	closed  atomic.Bool
}

// New creates a scaler of the given family and factor.
func New(kind Kind, factor int, opts ...Option) (*Scaler, error) {
	if factor < MinFactor || factor > MaxFactor {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFactor, factor)
	}

	s := &Scaler{kind: kind, factor: factor}
	switch kind {
	case HQ:
		s.block = hqBlock
	case XBRZ:
		s.block = xbrzBlock
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers != 1 {
		s.pool = parallel.NewWorkerPool(o.workers)
	}
	return s, nil
}

// Kind returns the scaling family.
func (s *Scaler) Kind() Kind { return s.kind }

// Factor returns the integer scale factor.
func (s *Scaler) Factor() int { return s.factor }

// String returns a short name such as "HQ2x".
func (s *Scaler) String() string {
	return fmt.Sprintf("%s%dx", s.kind, s.factor)
}

// OutputSize returns the dimensions Scale produces for a w x h source.
func (s *Scaler) OutputSize(w, h int) (int, int) {
	return w * s.factor, h * s.factor
}

// Scale enlarges the tightly packed w x h RGBA buffer src into dst, which
// must hold at least (w*f) x (h*f) pixels. Only dst is written.
func (s *Scaler) Scale(dst, src []byte, w, h int) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", framekit.ErrInvalidArgument, w, h)
	}
	f := s.factor
	if len(src) < w*h*4 {
		return fmt.Errorf("%w: source %d bytes for %dx%d", ErrBufferSize, len(src), w, h)
	}
	if len(dst) < w*h*f*f*4 {
		return fmt.Errorf("%w: destination %d bytes for %dx%d", ErrBufferSize, len(dst), w*f, h*f)
	}

	dstW := w * f
	rows := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range w {
				n := gather(src, w, h, x, y)
				s.block(dst, dstW, x*f, y*f, f, &n)
			}
		}
	}

	if s.pool != nil {
		s.pool.ExecuteRows(h, minBand, rows)
	} else {
		rows(0, h)
	}
	return nil
}

// LogActive records which scaler is in use. Only the first call per
// Scaler writes a log line.
func (s *Scaler) LogActive() {
	s.logOnce.Do(func() {
		framekit.Logger().Info("software scaler active",
			"scaler", s.String(),
			"parallel", s.pool != nil)
	})
}

// Close releases the worker pool. Safe to call more than once.
func (s *Scaler) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
