package image

import (
	"sync"
	"testing"
)

func TestPoolGetPut(t *testing.T) {
	pool := NewPool(2)

	buf := pool.Get(16, 8, FormatRGBA8)
	if buf == nil {
		t.Fatal("Get() returned nil")
	}
	buf.Fill(1, 2, 3, 4)
	pool.Put(buf)
	if pool.Len(16, 8, FormatRGBA8) != 1 {
		t.Fatalf("Len() = %d, want 1", pool.Len(16, 8, FormatRGBA8))
	}

	again := pool.Get(16, 8, FormatRGBA8)
	if again != buf {
		t.Error("Get() should reuse the pooled buffer")
	}
	for _, b := range again.Data() {
		if b != 0 {
			t.Fatal("reused buffer must be cleared")
		}
	}
}

func TestPoolLimitAndBorrowedViews(t *testing.T) {
	pool := NewPool(1)
	pool.Put(pool.Get(4, 4, FormatA8))
	pool.Put(pool.Get(4, 4, FormatA8))
	extra, _ := NewImageBuf(4, 4, FormatA8)
	pool.Put(extra)
	if got := pool.Len(4, 4, FormatA8); got != 1 {
		t.Errorf("Len() = %d, want 1 (bucket limit)", got)
	}

	padded, _ := NewImageBufWithStride(4, 4, FormatRGBA8, 32)
	pool.Put(padded)
	if pool.Len(4, 4, FormatRGBA8) != 0 {
		t.Error("padded buffers must not be pooled")
	}
	pool.Put(nil)
}

func TestPoolInvalidShape(t *testing.T) {
	if NewPool(0).Get(0, 4, FormatRGBA8) != nil {
		t.Error("Get() with zero width should return nil")
	}
}

func TestPoolConcurrent(t *testing.T) {
	pool := NewPool(0)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				b := pool.Get(8, 8, FormatRGBX8888)
				b.Fill(9, 9, 9, 9)
				pool.Put(b)
			}
		}()
	}
	wg.Wait()
}
