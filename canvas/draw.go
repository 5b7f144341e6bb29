package canvas

import (
	"math"

	"github.com/gogpu/framekit"
	intImage "github.com/gogpu/framekit/internal/image"
)

// paintMode picks the blend for a solid color: opaque colors replace,
// translucent ones are blended over the destination.
func paintMode(col framekit.Color) intImage.BlendMode {
	if col.IsOpaque() {
		return intImage.BlendReplace
	}
	return intImage.BlendOver
}

func (c *Canvas) plot(x, y int, col framekit.Color, mode intImage.BlendMode, clip framekit.Rect) {
	if !clip.Contains(framekit.Pt(x, y)) {
		return
	}
	intImage.BlendPixel(c.buf.PixelBytes(x, y), c.buf.Format(), col.R, col.G, col.B, col.A, mode)
}

// DrawLine draws a one-pixel line from (x1, y1) to (x2, y2) with
// Bresenham's algorithm. Both endpoints are drawn. Lines leaving the clip
// are cut to it first, so only visible pixels are walked.
func (c *Canvas) DrawLine(x1, y1, x2, y2 int, col framekit.Color) {
	clip := c.clip()
	if clip.Empty() {
		return
	}
	if !clip.Contains(framekit.Pt(x1, y1)) || !clip.Contains(framekit.Pt(x2, y2)) {
		var ok bool
		if x1, y1, x2, y2, ok = clipLine(x1, y1, x2, y2, clip); !ok {
			return
		}
	}

	mode := paintMode(col)
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx + dy
	x, y := x1, y1
	for {
		c.plot(x, y, col, mode, clip)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// clipLine cuts the segment to the pixel centers of r with the
// Liang-Barsky algorithm. The math runs in float64 so extreme coordinates
// cannot overflow. It reports false when no part of the segment is inside.
func clipLine(x1, y1, x2, y2 int, r framekit.Rect) (ax, ay, bx, by int, ok bool) {
	fx, fy := float64(x1), float64(y1)
	dx, dy := float64(x2)-fx, float64(y2)-fy
	xmin, ymin := float64(r.Corner.X), float64(r.Corner.Y)
	xmax, ymax := xmin+float64(r.Extent.W-1), ymin+float64(r.Extent.H-1)

	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, fx - xmin},
		{dx, xmax - fx},
		{-dy, fy - ymin},
		{dy, ymax - fy},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, t)
		}
	}

	// Rounded endpoints may land half a pixel outside; plot clips them.
	pin := func(v, lo, hi float64) int {
		return int(math.Round(min(max(v, lo-1), hi+1)))
	}
	ax, ay = pin(fx+t0*dx, xmin, xmax), pin(fy+t0*dy, ymin, ymax)
	bx, by = pin(fx+t1*dx, xmin, xmax), pin(fy+t1*dy, ymin, ymax)
	return ax, ay, bx, by, true
}

// addClamped returns a+b saturated to the int range.
func addClamped(a, b int) int {
	s := a + b
	if b > 0 && s < a {
		return math.MaxInt
	}
	if b < 0 && s > a {
		return math.MinInt
	}
	return s
}

// DrawRect outlines r with four edges from (x, y) to (x+w-1, y+h-1).
// Empty or negative rectangles draw nothing.
func (c *Canvas) DrawRect(r framekit.Rect, col framekit.Color) {
	if r.Empty() {
		return
	}
	x0, y0 := r.Corner.X, r.Corner.Y
	x1, y1 := addClamped(x0, r.Extent.W-1), addClamped(y0, r.Extent.H-1)

	c.DrawLine(x0, y0, x1, y0, col)
	c.DrawLine(x0, y1, x1, y1, col)
	c.DrawLine(x0, y0, x0, y1, col)
	c.DrawLine(x1, y0, x1, y1, col)
}

// FillRect fills r row by row.
func (c *Canvas) FillRect(r framekit.Rect, col framekit.Color) {
	r = r.Intersect(c.clip())
	if r.Empty() {
		return
	}

	f := c.buf.Format()
	bpp := f.BytesPerPixel()
	mode := paintMode(col)

	if mode == intImage.BlendReplace {
		px := make([]byte, bpp)
		intImage.EncodePixel(px, f, col.R, col.G, col.B, col.A)
		for y := r.Corner.Y; y < r.Corner.Y+r.Extent.H; y++ {
			off := c.buf.PixelOffset(r.Corner.X, y)
			row := c.buf.Data()[off : off+r.Extent.W*bpp]
			copy(row, px)
			for n := bpp; n < len(row); n *= 2 {
				copy(row[n:], row[:n])
			}
		}
		return
	}

	for y := r.Corner.Y; y < r.Corner.Y+r.Extent.H; y++ {
		off := c.buf.PixelOffset(r.Corner.X, y)
		row := c.buf.Data()[off : off+r.Extent.W*bpp]
		for i := 0; i < len(row); i += bpp {
			intImage.BlendPixel(row[i:i+bpp], f, col.R, col.G, col.B, col.A, mode)
		}
	}
}

// Fill fills the writable region with col.
func (c *Canvas) Fill(col framekit.Color) {
	c.FillRect(c.Bounds(), col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
