package image

import "sync"

// Pool recycles ImageBuf instances keyed by dimensions and format.
//
// Framebuffer-sized staging buffers (self-overlapping copies, scaler
// conversion, mipmap levels) are requested every frame; reusing them keeps
// the render loop allocation-free after warm-up.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*ImageBuf
	limit   int
}

type poolKey struct {
	width  int
	height int
	format Format
}

// NewPool creates a pool that retains at most maxPerBucket buffers per
// (width, height, format) key. Zero means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*ImageBuf),
		limit:   maxPerBucket,
	}
}

// Get returns a zeroed, tightly packed buffer of the requested shape.
// Returns nil when the shape is invalid.
func (p *Pool) Get(width, height int, format Format) *ImageBuf {
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	if bucket := p.buckets[key]; len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		buf.Clear()
		return buf
	}
	p.mu.Unlock()

	buf, err := NewImageBuf(width, height, format)
	if err != nil {
		return nil
	}
	return buf
}

// Put hands buf back to the pool. Borrowed views (non-tight stride) and
// nil buffers are ignored, as are buffers beyond the bucket limit.
func (p *Pool) Put(buf *ImageBuf) {
	if buf == nil || buf.stride != buf.format.RowBytes(buf.width) {
		return
	}
	key := poolKey{width: buf.width, height: buf.height, format: buf.format}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.limit > 0 && len(bucket) >= p.limit {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of idle buffers held for the given shape.
func (p *Pool) Len(width, height int, format Format) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height, format: format}])
}

// defaultPool is the package-level pool for convenient usage.
var defaultPool = NewPool(8)

// GetFromDefault retrieves a buffer from the package-level pool.
func GetFromDefault(width, height int, format Format) *ImageBuf {
	return defaultPool.Get(width, height, format)
}

// PutToDefault returns a buffer to the package-level pool.
func PutToDefault(buf *ImageBuf) {
	defaultPool.Put(buf)
}
