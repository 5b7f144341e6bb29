package image

import "math"

// MipmapChain holds successively halved copies of an image.
// Level 0 is the source itself and is never copied or released.
type MipmapChain struct {
	levels []*ImageBuf
}

// GenerateMipmaps builds a chain with a 2x2 box filter until the larger
// dimension reaches 1 pixel. Levels above 0 come from the default pool.
// Returns nil if src is nil, empty or indexed.
func GenerateMipmaps(src *ImageBuf) *MipmapChain {
	if src == nil || src.IsEmpty() || src.Format().IsIndexed() {
		return nil
	}

	n := 1 + int(math.Floor(math.Log2(float64(max(src.Width(), src.Height())))))
	chain := &MipmapChain{levels: make([]*ImageBuf, 1, n)}
	chain.levels[0] = src

	for i := 1; i < n; i++ {
		next := downsample(chain.levels[i-1])
		if next == nil {
			break
		}
		chain.levels = append(chain.levels, next)
	}
	return chain
}

func downsample(src *ImageBuf) *ImageBuf {
	srcW, srcH := src.Bounds()
	dstW := max(1, srcW/2)
	dstH := max(1, srcH/2)

	dst := GetFromDefault(dstW, dstH, src.Format())
	if dst == nil {
		return nil
	}

	for dy := range dstH {
		sy0 := dy * 2
		sy1 := min(sy0+1, srcH-1)
		for dx := range dstW {
			sx0 := dx * 2
			sx1 := min(sx0+1, srcW-1)

			var sum [4]uint16
			for _, p := range [4][2]int{{sx0, sy0}, {sx1, sy0}, {sx0, sy1}, {sx1, sy1}} {
				r, g, b, a := src.GetRGBA(p[0], p[1])
				sum[0] += uint16(r)
				sum[1] += uint16(g)
				sum[2] += uint16(b)
				sum[3] += uint16(a)
			}
			_ = dst.SetRGBA(dx, dy, byte(sum[0]/4), byte(sum[1]/4), byte(sum[2]/4), byte(sum[3]/4))
		}
	}
	return dst
}

// Level returns level n, or nil when n is out of range.
func (m *MipmapChain) Level(n int) *ImageBuf {
	if m == nil || n < 0 || n >= len(m.levels) {
		return nil
	}
	return m.levels[n]
}

// NumLevels returns the number of levels, 0 for a nil chain.
func (m *MipmapChain) NumLevels() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// LevelForScale picks floor(-log2(scale)) clamped to the chain.
// Scales >= 1 select level 0.
func (m *MipmapChain) LevelForScale(scale float64) *ImageBuf {
	if m == nil || len(m.levels) == 0 {
		return nil
	}
	if scale >= 1.0 || scale <= 0 {
		return m.levels[0]
	}
	level := clamp(int(math.Floor(-math.Log2(scale))), 0, len(m.levels)-1)
	return m.levels[level]
}

// Release returns levels above 0 to the pool. The chain must not be used
// afterwards.
func (m *MipmapChain) Release() {
	if m == nil {
		return
	}
	for i := 1; i < len(m.levels); i++ {
		PutToDefault(m.levels[i])
		m.levels[i] = nil
	}
	m.levels = m.levels[:1]
}
