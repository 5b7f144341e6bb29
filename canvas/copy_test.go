package canvas

import (
	"bytes"
	"testing"

	"github.com/gogpu/framekit"
)

func numbered(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c := mustNew(t, w, h, RGBX8888)
	for y := range h {
		for x := range w {
			c.SetPixel(x, y, framekit.RGB(uint8(x), uint8(y), uint8(x*y)))
		}
	}
	return c
}

func TestCopyClipping(t *testing.T) {
	tests := []struct {
		name    string
		srcRect framekit.Rect
		dst     framekit.Point
		check   map[framekit.Point]framekit.Point // dst pixel -> src pixel
		blank   []framekit.Point
	}{
		{
			name:    "zero extent copies whole source",
			srcRect: framekit.Rect{},
			dst:     framekit.Pt(2, 2),
			check:   map[framekit.Point]framekit.Point{{X: 2, Y: 2}: {X: 0, Y: 0}, {X: 9, Y: 9}: {X: 7, Y: 7}},
			blank:   []framekit.Point{{X: 1, Y: 1}, {X: 10, Y: 10}},
		},
		{
			name:    "source clipped at top-left shifts destination",
			srcRect: framekit.RectXYWH(-2, -2, 4, 4),
			dst:     framekit.Pt(0, 0),
			check:   map[framekit.Point]framekit.Point{{X: 2, Y: 2}: {X: 0, Y: 0}, {X: 3, Y: 3}: {X: 1, Y: 1}},
			blank:   []framekit.Point{{X: 1, Y: 1}, {X: 4, Y: 4}},
		},
		{
			name:    "destination clipped shifts source",
			srcRect: framekit.RectXYWH(0, 0, 4, 4),
			dst:     framekit.Pt(-1, -1),
			check:   map[framekit.Point]framekit.Point{{X: 0, Y: 0}: {X: 1, Y: 1}, {X: 2, Y: 2}: {X: 3, Y: 3}},
			blank:   []framekit.Point{{X: 3, Y: 3}},
		},
		{
			name:    "destination clipped at far edge",
			srcRect: framekit.RectXYWH(0, 0, 8, 8),
			dst:     framekit.Pt(14, 14),
			check:   map[framekit.Point]framekit.Point{{X: 15, Y: 15}: {X: 1, Y: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := numbered(t, 8, 8)
			dst := mustNew(t, 16, 16, RGBX8888)
			dst.Fill(framekit.White)

			dst.Copy(src, tt.srcRect, tt.dst)
			for d, s := range tt.check {
				wantPixel(t, dst, d.X, d.Y, src.Pixel(s.X, s.Y))
			}
			for _, p := range tt.blank {
				wantPixel(t, dst, p.X, p.Y, framekit.White)
			}
		})
	}
}

func TestCopyNegativeExtentIsNoOp(t *testing.T) {
	src := numbered(t, 4, 4)
	dst := mustNew(t, 4, 4, RGBX8888)
	dst.Copy(src, framekit.RectXYWH(0, 0, -1, 4), framekit.Point{})
	dst.Copy(src, framekit.RectXYWH(0, 0, 4, -1), framekit.Point{})
	if !bytes.Equal(dst.Bytes(), make([]byte, len(dst.Bytes()))) {
		t.Error("negative extent copy touched memory")
	}
}

func TestSelfCopyMatchesStagedCopy(t *testing.T) {
	tests := []struct {
		name string
		r    framekit.Rect
		dst  framekit.Point
	}{
		{"shift right-down", framekit.RectXYWH(2, 2, 8, 8), framekit.Pt(4, 5)},
		{"shift left-up", framekit.RectXYWH(4, 4, 8, 8), framekit.Pt(1, 2)},
		{"shift by one column", framekit.RectXYWH(0, 0, 15, 16), framekit.Pt(1, 0)},
		{"shift by one row", framekit.RectXYWH(0, 1, 16, 15), framekit.Pt(0, 0)},
		{"in place", framekit.RectXYWH(3, 3, 6, 6), framekit.Pt(3, 3)},
		{"contained", framekit.RectXYWH(0, 0, 16, 16), framekit.Pt(4, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := numbered(t, 16, 16)
			want := c.Clone()
			want.Copy(c.Clone(), tt.r, tt.dst)

			c.Copy(c, tt.r, tt.dst)
			if !bytes.Equal(c.Bytes(), want.Bytes()) {
				t.Error("self copy differs from staged copy")
			}
		})
	}
}

func TestSelfCopyThroughSeparateViews(t *testing.T) {
	data := make([]byte, 16*16*4)
	a, _ := FromRaw(data, 16, 16, 64, RGBX8888)
	b, _ := FromRaw(data, 16, 16, 64, RGBX8888)
	for i := range 16 {
		a.SetPixel(i, 0, framekit.RGB(uint8(i), 0, 0))
	}
	if !a.SharesMemory(b) {
		t.Fatal("views over one slice should share memory")
	}

	b.Copy(a, framekit.RectXYWH(0, 0, 15, 1), framekit.Pt(1, 0))
	for i := 1; i < 16; i++ {
		wantPixel(t, b, i, 0, framekit.RGB(uint8(i-1), 0, 0))
	}
}

func TestCopyConvertsFormats(t *testing.T) {
	src := mustNew(t, 2, 2, RGBA8)
	src.Fill(framekit.RGBA(10, 20, 30, 40))
	dst := mustNew(t, 2, 2, RGBX8888)
	dst.Copy(src, framekit.Rect{}, framekit.Point{})
	wantPixel(t, dst, 1, 1, framekit.RGB(10, 20, 30))

	img := mustNew(t, 4, 4, RGBX8888)
	numbered(t, 8, 8).CopyTo(img, framekit.RectXYWH(4, 4, 4, 4))
	wantPixel(t, img, 0, 0, framekit.RGB(4, 4, 16))
}
