package drawqueue

import (
	"runtime"
	"sync"

	"github.com/gogpu/framekit"
)

// Executor applies dispatched commands. Flush calls it on the goroutine
// that called Flush, one command at a time, in FIFO order.
type Executor interface {
	Execute(cmd Command)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(cmd Command)

// Execute implements Executor.
func (f ExecutorFunc) Execute(cmd Command) { f(cmd) }

// Option configures a Queue.
type Option func(*Queue)

// WithExecutor sets the executor Flush dispatches to.
func WithExecutor(e Executor) Option {
	return func(q *Queue) {
		q.exec = e
	}
}

// Stats is a snapshot of queue occupancy and counters.
type Stats struct {
	// Size is the number of published commands Flush may dispatch.
	Size int

	// FullSize counts published and batched commands.
	FullSize int

	// MaxSize is the capacity.
	MaxSize int

	// BatchDepth is the current batch nesting.
	BatchDepth int

	Pushed       uint64
	Processed    uint64
	Blocked      uint64 // pushes that waited for space
	Slowdowns    uint64 // pushes that yielded above the slowdown size
	ForcedResets uint64 // batches broken to relieve backpressure
}

// Utilization returns FullSize as a fraction of MaxSize.
func (s Stats) Utilization() float64 {
	if s.MaxSize == 0 {
		return 0
	}
	return float64(s.FullSize) / float64(s.MaxSize)
}

// Queue is a bounded multi-producer, single-consumer FIFO of draw commands.
//
// Push and the batch methods are safe for concurrent use from any number
// of goroutines. Flush is serialized internally; it is normally called
// from one render goroutine.
type Queue struct {
	cfg  Config
	exec Executor

	mu      sync.Mutex
	notFull *sync.Cond

	// ring holds FullSize commands starting at head. The first published
	// of them are visible to Flush; the rest belong to an open batch.
	ring      []Command
	head      int
	size      int
	published int
	depth     int
	closed    bool

	pushed       uint64
	processed    uint64
	blocked      uint64
	slowdowns    uint64
	forcedResets uint64

	ready    chan struct{}
	closedCh chan struct{}

	flushMu sync.Mutex
	scratch []Command

	warn framekit.OnceLog
}

// New creates a queue. Storage for cfg.MaxSize commands is allocated here
// and never grows.
func New(cfg Config, opts ...Option) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q := &Queue{
		cfg:      cfg,
		ring:     make([]Command, cfg.MaxSize),
		ready:    make(chan struct{}, 1),
		closedCh: make(chan struct{}),
		scratch:  make([]Command, 0, cfg.LivelockMax),
	}
	q.notFull = sync.NewCond(&q.mu)
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Config returns the queue configuration.
func (q *Queue) Config() Config {
	return q.cfg
}

// SetExecutor replaces the executor used by Flush.
func (q *Queue) SetExecutor(e Executor) {
	q.flushMu.Lock()
	q.exec = e
	q.flushMu.Unlock()
}

// Push appends cmd, blocking while the queue is full. It returns ErrClosed
// if the queue is closed before cmd is accepted.
func (q *Queue) Push(cmd Command) error {
	return q.push(cmd, true)
}

// TryPush appends cmd without waiting. It returns ErrWouldBlock if the
// queue is full.
func (q *Queue) TryPush(cmd Command) error {
	return q.push(cmd, false)
}

func (q *Queue) push(cmd Command, wait bool) error {
	if cmd == nil {
		return ErrNilCommand
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.size == len(q.ring) {
		if q.depth > 0 {
			q.forceResetLocked("full")
		}
		if !wait {
			q.mu.Unlock()
			return ErrWouldBlock
		}
		q.blocked++
		for q.size == len(q.ring) && !q.closed {
			q.notFull.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
	}

	q.ring[(q.head+q.size)%len(q.ring)] = cmd
	q.size++
	q.pushed++

	switch {
	case q.depth == 0:
		q.publishLocked()
	case q.size >= q.cfg.ForceBreakSize:
		q.forceResetLocked("backlog")
	}

	slow := q.cfg.ForceSlowdownSize > 0 && q.size >= q.cfg.ForceSlowdownSize
	if slow {
		q.slowdowns++
	}
	q.mu.Unlock()

	if slow {
		runtime.Gosched()
	}
	return nil
}

// publishLocked makes every queued command visible to Flush.
func (q *Queue) publishLocked() {
	if q.published == q.size {
		return
	}
	q.published = q.size
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue) forceResetLocked(reason string) {
	q.forcedResets++
	q.warn.Warn("drawqueue.forcereset", "draw queue batch force-reset",
		"reason", reason, "depth", q.depth, "size", q.size)
	q.depth = 0
	q.publishLocked()
}

// Batch opens a batch. Batches nest; commands pushed while any batch is
// open stay invisible to Flush until the outermost one closes.
func (q *Queue) Batch() {
	q.mu.Lock()
	q.depth++
	q.mu.Unlock()
}

// Unbatch closes a batch. Closing the outermost batch publishes its
// commands and signals Ready. Unbatch after a forced reset does nothing.
func (q *Queue) Unbatch() {
	q.mu.Lock()
	if q.depth > 0 {
		q.depth--
		if q.depth == 0 {
			q.publishLocked()
		}
	}
	q.mu.Unlock()
}

// BatchReset closes every open batch and publishes their commands.
func (q *Queue) BatchReset() {
	q.mu.Lock()
	q.depth = 0
	q.publishLocked()
	q.mu.Unlock()
}

// Batched runs fn inside a batch.
func (q *Queue) Batched(fn func()) {
	q.Batch()
	defer q.Unbatch()
	fn()
}

// BatchDepth returns the current batch nesting.
func (q *Queue) BatchDepth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.depth
}

// Flush dispatches published commands in FIFO order, at most
// Config.LivelockMax of them, and returns how many were dispatched.
// Commands beyond the cap stay queued for the next call.
//
// Flush returns 0 without dispatching while a batch is open or when no
// executor is set.
func (q *Queue) Flush() int {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	if q.exec == nil {
		return 0
	}

	q.mu.Lock()
	if q.depth > 0 || q.published == 0 {
		q.mu.Unlock()
		return 0
	}
	n := min(q.published, q.cfg.LivelockMax)
	batch := q.scratch[:0]
	for range n {
		batch = append(batch, q.ring[q.head])
		q.ring[q.head] = nil
		q.head = (q.head + 1) % len(q.ring)
	}
	q.size -= n
	q.published -= n
	q.processed += uint64(n) // #nosec G115 -- n is positive
	q.notFull.Broadcast()
	q.mu.Unlock()

	for i, cmd := range batch {
		q.exec.Execute(cmd)
		if w, ok := cmd.(WaitForSignalCommand); ok && w.Signal != nil {
			w.Signal.Fire()
		}
		batch[i] = nil
	}
	return n
}

// ProcessCommands is Flush under the name used by render loops.
func (q *Queue) ProcessCommands() int {
	return q.Flush()
}

// Len returns the number of queued commands, batched ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Stats returns a snapshot of the queue state.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Size:         q.published,
		FullSize:     q.size,
		MaxSize:      len(q.ring),
		BatchDepth:   q.depth,
		Pushed:       q.pushed,
		Processed:    q.processed,
		Blocked:      q.blocked,
		Slowdowns:    q.slowdowns,
		ForcedResets: q.forcedResets,
	}
}

// Ready returns a channel that receives a value after commands are
// published. Several publications may coalesce into one receive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Done returns a channel closed by Close.
func (q *Queue) Done() <-chan struct{} {
	return q.closedCh
}

// Close rejects further pushes and releases blocked producers with
// ErrClosed. Queued commands can still be flushed. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.closedCh)
	q.notFull.Broadcast()
}
