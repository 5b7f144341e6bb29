package drawqueue

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/framekit"
)

// recorder is an Executor that keeps every dispatched command.
type recorder struct {
	mu   sync.Mutex
	cmds []Command
}

func (r *recorder) Execute(cmd Command) {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmds)
}

func (r *recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.cmds...)
}

// captureHandler records log messages.
type captureHandler struct {
	mu   sync.Mutex
	msgs []string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h *captureHandler) WithGroup(string) slog.Handler             { return h }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.msgs = append(h.msgs, r.Message)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) count(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

func captureLogs(t *testing.T) *captureHandler {
	t.Helper()
	orig := framekit.Logger()
	h := &captureHandler{}
	framekit.SetLogger(slog.New(h))
	t.Cleanup(func() { framekit.SetLogger(orig) })
	return h
}

func smallConfig(size, livelock int) Config {
	return Config{MaxSize: size, ForceBreakSize: size, LivelockMax: livelock}
}

func newTestQueue(t *testing.T, cfg Config) (*Queue, *recorder) {
	t.Helper()
	rec := &recorder{}
	q, err := New(cfg, WithExecutor(rec))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(q.Close)
	return q, rec
}

func line(producer, seq int) Command {
	return LineCommand{X1: producer, Y1: seq}
}

// ============================================================================
// Ordering
// ============================================================================

func TestQueue_FIFO(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(16, 16))
	for i := range 10 {
		if err := q.Push(line(0, i)); err != nil {
			t.Fatalf("Push(%d) error = %v", i, err)
		}
	}
	if n := q.Flush(); n != 10 {
		t.Fatalf("Flush() = %d, want 10", n)
	}
	for i, cmd := range rec.Commands() {
		if got := cmd.(LineCommand).Y1; got != i {
			t.Errorf("command %d has seq %d", i, got)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after flush, want 0", q.Len())
	}
}

func TestQueue_FIFOAcrossProducers(t *testing.T) {
	const producers, perProducer = 4, 500
	q, rec := newTestQueue(t, smallConfig(64, 16))

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				if err := q.Push(line(p, i)); err != nil {
					t.Errorf("producer %d Push error = %v", p, err)
					return
				}
			}
		}()
	}

	deadline := time.Now().Add(10 * time.Second)
	for rec.Len() < producers*perProducer {
		if time.Now().After(deadline) {
			t.Fatalf("consumer saw %d of %d commands", rec.Len(), producers*perProducer)
		}
		if q.Flush() == 0 {
			runtime.Gosched()
		}
	}
	wg.Wait()

	next := make([]int, producers)
	for _, cmd := range rec.Commands() {
		l := cmd.(LineCommand)
		if l.Y1 != next[l.X1] {
			t.Fatalf("producer %d: got seq %d, want %d", l.X1, l.Y1, next[l.X1])
		}
		next[l.X1]++
	}
	if st := q.Stats(); st.Pushed != st.Processed {
		t.Errorf("Pushed = %d, Processed = %d", st.Pushed, st.Processed)
	}
}

func TestQueue_LivelockCap(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(16, 4))
	for i := range 10 {
		_ = q.Push(line(0, i))
	}
	for _, want := range []int{4, 4, 2, 0} {
		if got := q.Flush(); got != want {
			t.Fatalf("Flush() = %d, want %d", got, want)
		}
	}
	if rec.Len() != 10 {
		t.Errorf("dispatched %d commands, want 10", rec.Len())
	}
}

func TestQueue_FlushWithoutExecutor(t *testing.T) {
	q, err := New(smallConfig(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()
	_ = q.Push(line(0, 0))
	if n := q.Flush(); n != 0 {
		t.Errorf("Flush() = %d without executor, want 0", n)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want command kept", q.Len())
	}

	rec := &recorder{}
	q.SetExecutor(rec)
	if n := q.ProcessCommands(); n != 1 {
		t.Errorf("ProcessCommands() = %d, want 1", n)
	}
}

func TestQueue_NilCommand(t *testing.T) {
	q, _ := newTestQueue(t, smallConfig(4, 4))
	if err := q.Push(nil); !errors.Is(err, ErrNilCommand) {
		t.Errorf("Push(nil) = %v, want ErrNilCommand", err)
	}
}

// ============================================================================
// Batching
// ============================================================================

func TestQueue_BatchHidesCommands(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(16, 16))

	q.Batch()
	q.Batch()
	for i := range 3 {
		_ = q.Push(line(0, i))
	}
	if n := q.Flush(); n != 0 {
		t.Fatalf("Flush() inside batch = %d, want 0", n)
	}
	st := q.Stats()
	if st.Size != 0 || st.FullSize != 3 || st.BatchDepth != 2 {
		t.Errorf("Stats() = %+v, want Size 0, FullSize 3, BatchDepth 2", st)
	}

	q.Unbatch()
	if n := q.Flush(); n != 0 {
		t.Fatalf("Flush() inside outer batch = %d, want 0", n)
	}
	q.Unbatch()
	if n := q.Flush(); n != 3 {
		t.Fatalf("Flush() after unbatch = %d, want 3", n)
	}
	if rec.Len() != 3 {
		t.Errorf("dispatched %d, want 3", rec.Len())
	}

	q.Unbatch()
	if d := q.BatchDepth(); d != 0 {
		t.Errorf("BatchDepth() = %d after extra Unbatch, want 0", d)
	}
}

func TestQueue_BatchedFunc(t *testing.T) {
	q, _ := newTestQueue(t, smallConfig(8, 8))
	q.Batched(func() {
		_ = q.Push(line(0, 0))
		if d := q.BatchDepth(); d != 1 {
			t.Errorf("BatchDepth() inside Batched = %d, want 1", d)
		}
	})
	if d := q.BatchDepth(); d != 0 {
		t.Errorf("BatchDepth() after Batched = %d, want 0", d)
	}
	if n := q.Flush(); n != 1 {
		t.Errorf("Flush() = %d, want 1", n)
	}
}

func TestQueue_BatchReset(t *testing.T) {
	q, _ := newTestQueue(t, smallConfig(8, 8))
	q.Batch()
	q.Batch()
	_ = q.Push(line(0, 0))
	q.BatchReset()
	if d := q.BatchDepth(); d != 0 {
		t.Errorf("BatchDepth() = %d, want 0", d)
	}
	if n := q.Flush(); n != 1 {
		t.Errorf("Flush() = %d, want 1", n)
	}
}

func TestQueue_Ready(t *testing.T) {
	q, _ := newTestQueue(t, smallConfig(8, 8))

	_ = q.Push(line(0, 0))
	select {
	case <-q.Ready():
	default:
		t.Fatal("Ready not signalled after unbatched push")
	}

	q.Batch()
	_ = q.Push(line(0, 1))
	select {
	case <-q.Ready():
		t.Fatal("Ready signalled inside batch")
	default:
	}
	q.Unbatch()
	select {
	case <-q.Ready():
	default:
		t.Fatal("Ready not signalled after unbatch")
	}
}

func TestQueue_ForceResetOnBacklog(t *testing.T) {
	logs := captureLogs(t)
	q, _ := newTestQueue(t, smallConfig(4, 4))

	q.Batch()
	for i := range 3 {
		_ = q.Push(line(0, i))
	}
	if st := q.Stats(); st.ForcedResets != 0 || st.BatchDepth != 1 {
		t.Fatalf("Stats() = %+v before break size", st)
	}
	_ = q.Push(line(0, 3))

	st := q.Stats()
	if st.ForcedResets != 1 || st.BatchDepth != 0 || st.Size != 4 {
		t.Errorf("Stats() = %+v, want one forced reset publishing 4", st)
	}
	if n := q.Flush(); n != 4 {
		t.Errorf("Flush() = %d, want 4", n)
	}
	q.Unbatch()
	if d := q.BatchDepth(); d != 0 {
		t.Errorf("BatchDepth() = %d after Unbatch following reset", d)
	}
	if got := logs.count("draw queue batch force-reset"); got != 1 {
		t.Errorf("force-reset warnings = %d, want 1", got)
	}
}

func TestQueue_ForceResetWhenFull(t *testing.T) {
	logs := captureLogs(t)
	q, _ := newTestQueue(t, smallConfig(4, 4))

	for i := range 4 {
		_ = q.Push(line(0, i))
	}
	q.Batch()
	if err := q.TryPush(line(0, 4)); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("TryPush() on full queue = %v, want ErrWouldBlock", err)
	}
	if !errors.Is(ErrWouldBlock, ErrQueueFull) {
		t.Error("ErrWouldBlock does not wrap ErrQueueFull")
	}
	if d := q.BatchDepth(); d != 0 {
		t.Errorf("BatchDepth() = %d, want forced reset", d)
	}

	// A second reset in the same session is not logged again.
	q.Batch()
	_ = q.TryPush(line(0, 5))
	if st := q.Stats(); st.ForcedResets != 2 {
		t.Errorf("ForcedResets = %d, want 2", st.ForcedResets)
	}
	if got := logs.count("draw queue batch force-reset"); got != 1 {
		t.Errorf("force-reset warnings = %d, want 1", got)
	}
}

// ============================================================================
// Backpressure and shutdown
// ============================================================================

func TestQueue_PushBlocksUntilFlush(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(2, 2))
	_ = q.Push(line(0, 0))
	_ = q.Push(line(0, 1))

	done := make(chan error, 1)
	go func() { done <- q.Push(line(0, 2)) }()

	select {
	case err := <-done:
		t.Fatalf("Push on full queue returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if n := q.Flush(); n != 2 {
		t.Fatalf("Flush() = %d, want 2", n)
	}
	if err := <-done; err != nil {
		t.Fatalf("blocked Push error = %v", err)
	}
	q.Flush()
	if rec.Len() != 3 {
		t.Errorf("dispatched %d, want 3", rec.Len())
	}
	if st := q.Stats(); st.Blocked != 1 {
		t.Errorf("Blocked = %d, want 1", st.Blocked)
	}
}

func TestQueue_CloseReleasesProducers(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(1, 1))
	_ = q.Push(line(0, 0))

	done := make(chan error, 1)
	go func() { done <- q.Push(line(0, 1)) }()
	time.Sleep(10 * time.Millisecond)
	q.Close()
	q.Close()

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("blocked Push after Close = %v, want ErrClosed", err)
	}
	if err := q.Push(line(0, 2)); !errors.Is(err, ErrClosed) {
		t.Errorf("Push after Close = %v, want ErrClosed", err)
	}
	if n := q.Flush(); n != 1 || rec.Len() != 1 {
		t.Errorf("Flush() after Close = %d, want the queued command", n)
	}
	select {
	case <-q.Done():
	default:
		t.Error("Done() not closed")
	}
}

func TestQueue_Slowdown(t *testing.T) {
	cfg := smallConfig(8, 8)
	cfg.ForceSlowdownSize = 2
	q, _ := newTestQueue(t, cfg)
	for i := range 4 {
		_ = q.Push(line(0, i))
	}
	if st := q.Stats(); st.Slowdowns != 3 {
		t.Errorf("Slowdowns = %d, want 3", st.Slowdowns)
	}
}

func TestStats_Utilization(t *testing.T) {
	tests := []struct {
		st   Stats
		want float64
	}{
		{Stats{FullSize: 0, MaxSize: 8}, 0},
		{Stats{FullSize: 2, MaxSize: 8}, 0.25},
		{Stats{FullSize: 8, MaxSize: 8}, 1},
		{Stats{}, 0},
	}
	for _, tt := range tests {
		if got := tt.st.Utilization(); got != tt.want {
			t.Errorf("%+v.Utilization() = %v, want %v", tt.st, got, tt.want)
		}
	}
}

// ============================================================================
// Signals
// ============================================================================

func TestPushWaitForSignal(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(8, 8))
	_ = q.PushFillRect(framekit.ScreenMain, framekit.RectXYWH(0, 0, 1, 1), framekit.White)

	done := make(chan error, 1)
	go func() { done <- q.PushWaitForSignal() }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		q.Flush()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("PushWaitForSignal() = %v", err)
			}
			if rec.Len() != 2 {
				t.Errorf("dispatched %d before signal returned, want 2", rec.Len())
			}
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("PushWaitForSignal did not return")
		}
		runtime.Gosched()
	}
}

func TestPushWaitForSignal_OtherProducerBatch(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(8, 8))
	q.Batch()

	done := make(chan error, 1)
	go func() { done <- q.PushWaitForSignal() }()
	for q.Len() == 0 {
		runtime.Gosched()
	}
	if n := q.Flush(); n != 0 {
		t.Fatalf("Flush() inside batch = %d, want 0", n)
	}
	select {
	case err := <-done:
		t.Fatalf("PushWaitForSignal() returned %v while the batch was open", err)
	case <-time.After(20 * time.Millisecond):
	}

	q.Unbatch()
	deadline := time.Now().Add(5 * time.Second)
	for {
		q.Flush()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("PushWaitForSignal() = %v", err)
			}
			if rec.Len() != 1 {
				t.Errorf("dispatched %d, want 1", rec.Len())
			}
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("PushWaitForSignal did not return after Unbatch")
		}
		runtime.Gosched()
	}
}

func TestPushWaitForSignalContext_OwnBatch(t *testing.T) {
	q, rec := newTestQueue(t, smallConfig(8, 8))
	q.Batch()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.PushWaitForSignalContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("PushWaitForSignalContext() in own batch = %v, want DeadlineExceeded", err)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want the signal still queued", q.Len())
	}

	q.Unbatch()
	if n := q.Flush(); n != 1 || rec.Len() != 1 {
		t.Errorf("Flush() = %d, dispatched %d; want 1, 1", n, rec.Len())
	}
	if _, ok := rec.Commands()[0].(WaitForSignalCommand); !ok {
		t.Errorf("dispatched %T, want WaitForSignalCommand", rec.Commands()[0])
	}
}

func TestPushWaitForSignal_Closed(t *testing.T) {
	q, _ := newTestQueue(t, smallConfig(8, 8))
	done := make(chan error, 1)
	go func() { done <- q.PushWaitForSignal() }()
	for q.Len() == 0 {
		runtime.Gosched()
	}
	q.Close()
	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("PushWaitForSignal() after Close = %v, want ErrClosed", err)
	}
}
