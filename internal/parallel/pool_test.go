package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Creation
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()
			if pool.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", pool.Workers(), tt.want)
			}
			if !pool.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

// =============================================================================
// ExecuteAll / ExecuteRows
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
	pool.ExecuteAll(nil)
}

func TestWorkerPool_ExecuteRowsCoversEveryRowOnce(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		rows    int
		minBand int
	}{
		{"framebuffer", 4, 240, 8},
		{"fewer rows than band", 4, 5, 8},
		{"single worker", 1, 100, 1},
		{"odd split", 3, 101, 1},
		{"zero band treated as one", 2, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()

			hits := make([]atomic.Int32, tt.rows)
			pool.ExecuteRows(tt.rows, tt.minBand, func(y0, y1 int) {
				for y := y0; y < y1; y++ {
					hits[y].Add(1)
				}
			})
			for y := range hits {
				if n := hits[y].Load(); n != 1 {
					t.Fatalf("row %d visited %d times", y, n)
				}
			}
		})
	}
}

func TestWorkerPool_ExecuteRowsAfterClose(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()

	var rows int
	pool.ExecuteRows(64, 1, func(y0, y1 int) { rows += y1 - y0 })
	if rows != 64 {
		t.Errorf("closed pool covered %d rows, want 64 on the caller", rows)
	}
}

// =============================================================================
// Submit / Close
// =============================================================================

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)

	var wg sync.WaitGroup
	var counter atomic.Int64
	for range 20 {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
	}
	pool.Submit(nil)
	wg.Wait()
	pool.Close()

	if counter.Load() != 20 {
		t.Errorf("counter = %d, want 20", counter.Load())
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()
	if pool.IsRunning() {
		t.Error("pool should not be running after Close")
	}

	var ran atomic.Bool
	pool.ExecuteAll([]func(){func() { ran.Store(true) }})
	pool.Submit(func() { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Error("closed pool must not run new work")
	}
}

func TestWorkerPool_CloseRunsQueuedWork(t *testing.T) {
	pool := NewWorkerPool(1)

	var counter atomic.Int64
	block := make(chan struct{})
	pool.Submit(func() { <-block })
	for range 5 {
		pool.Submit(func() { counter.Add(1) })
	}
	close(block)
	pool.Close()

	if counter.Load() != 5 {
		t.Errorf("counter = %d, want 5", counter.Load())
	}
}

func BenchmarkWorkerPool_ExecuteRows(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	buf := make([]byte, 640*480*4)
	for b.Loop() {
		pool.ExecuteRows(480, 16, func(y0, y1 int) {
			for i := y0 * 640 * 4; i < y1*640*4; i++ {
				buf[i]++
			}
		})
	}
}
