package canvas

import (
	"runtime"
	"testing"

	"github.com/gogpu/framekit"
)

func checker(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c := mustNew(t, w, h, RGBX8888)
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				c.SetPixel(x, y, red)
			} else {
				c.SetPixel(x, y, blue)
			}
		}
	}
	return c
}

func TestDrawImageHotSpot(t *testing.T) {
	dst := mustNew(t, 16, 16, RGBX8888)
	src := checker(t, 4, 4)

	dst.DrawImage(src, framekit.Pt(2, 1), framekit.Pt(8, 8), ImageOptions{})

	wantPixel(t, dst, 6, 7, red)
	wantPixel(t, dst, 7, 7, blue)
	wantPixel(t, dst, 9, 10, red)
	wantPixel(t, dst, 5, 7, framekit.Black)
	wantPixel(t, dst, 10, 7, framekit.Black)
}

func TestDrawImageNearestScale(t *testing.T) {
	tests := []struct {
		name  string
		scale int
		size  int
	}{
		{"zero is identity", 0, 4},
		{"identity", ScaleIdentity, 4},
		{"double", 512, 8},
		{"half", 128, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := mustNew(t, 16, 16, RGBX8888)
			dst.Fill(green)
			src := checker(t, 4, 4)
			dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{Scale: tt.scale})

			wantPixel(t, dst, tt.size-1, tt.size-1, red)
			wantPixel(t, dst, tt.size, 0, green)
			wantPixel(t, dst, 0, tt.size, green)
		})
	}
}

func TestDrawImageNegativeScaleIsNoOp(t *testing.T) {
	dst := mustNew(t, 8, 8, RGBX8888)
	dst.DrawImage(checker(t, 4, 4), framekit.Point{}, framekit.Point{}, ImageOptions{Scale: -256})
	wantPixel(t, dst, 0, 0, framekit.Black)
}

func TestDrawImageSmoothScale(t *testing.T) {
	for _, mode := range []ScaleMode{ScaleBilinear, ScaleTrilinear} {
		t.Run(mode.String(), func(t *testing.T) {
			src := mustNew(t, 8, 8, RGBX8888)
			src.Fill(framekit.RGB(80, 160, 240))
			dst := mustNew(t, 32, 32, RGBX8888)

			for _, scale := range []int{64, 512} {
				dst.Clear()
				dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{Scale: scale, Mode: mode})
				n := 8 * scale / ScaleIdentity
				wantPixel(t, dst, n-1, n-1, framekit.RGB(80, 160, 240))
				wantPixel(t, dst, n, n, framekit.Black)
			}
		})
	}
}

func TestDrawImageSmoothScaleWindow(t *testing.T) {
	// 2x2 source scaled to 128x128; only its bottom-right quarter lands
	// on screen, sampled from the pure outer band of each source pixel.
	src := mustNew(t, 2, 2, RGBX8888)
	src.Fill(blue)
	src.SetPixel(1, 1, red)

	tests := []struct {
		name string
		at   framekit.Point
		on   []framekit.Point
		col  []framekit.Color
	}{
		{
			name: "top left off screen",
			at:   framekit.Pt(-100, -100),
			on:   []framekit.Point{{X: 0, Y: 0}, {X: 27, Y: 27}, {X: 28, Y: 28}},
			col:  []framekit.Color{red, red, framekit.Black},
		},
		{
			name: "left off screen",
			at:   framekit.Pt(-100, 0),
			on:   []framekit.Point{{X: 0, Y: 10}, {X: 0, Y: 120}, {X: 27, Y: 127}, {X: 28, Y: 10}},
			col:  []framekit.Color{blue, red, red, framekit.Black},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := mustNew(t, 320, 240, RGBX8888)
			dst.DrawImage(src, framekit.Point{}, tt.at, ImageOptions{Scale: ScaleIdentity * 64, Mode: ScaleBilinear})
			for i, p := range tt.on {
				wantPixel(t, dst, p.X, p.Y, tt.col[i])
			}
		})
	}
}

func TestDrawImageHugeScaleStaysBounded(t *testing.T) {
	src := mustNew(t, 64, 64, RGBA8)
	src.Fill(framekit.RGB(80, 160, 240))
	dst := mustNew(t, 320, 240, RGBX8888)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{Scale: ScaleIdentity * 64, Mode: ScaleBilinear})
	runtime.ReadMemStats(&after)

	if got := after.TotalAlloc - before.TotalAlloc; got > 16<<20 {
		t.Errorf("allocated %d bytes for a 320x240 window", got)
	}
	wantPixel(t, dst, 0, 0, framekit.RGB(80, 160, 240))
	wantPixel(t, dst, 319, 239, framekit.RGB(80, 160, 240))

	for _, mode := range []ScaleMode{ScaleNearest, ScaleBilinear} {
		dst.Clear()
		dst.DrawImage(src, framekit.Point{}, framekit.Pt(10, 10), ImageOptions{Scale: 1 << 40, Mode: mode})
		wantPixel(t, dst, 10, 10, framekit.RGB(80, 160, 240))
		wantPixel(t, dst, 319, 239, framekit.RGB(80, 160, 240))
		wantPixel(t, dst, 9, 9, framekit.Black)
	}
}

func TestDrawImageAlphaSource(t *testing.T) {
	src := mustNew(t, 2, 1, RGBA8)
	src.SetPixel(0, 0, framekit.RGBA(200, 0, 100, 128))
	src.SetPixel(1, 0, framekit.Transparent)

	dst := mustNew(t, 2, 1, RGBX8888)
	dst.Fill(framekit.RGB(100, 100, 100))
	dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{})

	wantPixel(t, dst, 0, 0, framekit.RGB(150, 49, 100))
	wantPixel(t, dst, 1, 0, framekit.RGB(100, 100, 100))
}

func TestDrawImageBlendModes(t *testing.T) {
	tests := []struct {
		name  string
		blend DrawMode
		want  framekit.Color
	}{
		{"normal replaces opaque source", DrawMode{}, framekit.RGB(200, 0, 100)},
		{"additive full", Additive(255), framekit.RGB(255, 100, 200)},
		{"additive half", Additive(128), framekit.RGB(200, 100, 150)},
		{"alpha half", Alpha(128), framekit.RGB(150, 49, 100)},
		{"alpha zero", Alpha(0), framekit.RGB(100, 100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := mustNew(t, 1, 1, RGBX8888)
			src.Fill(framekit.RGB(200, 0, 100))
			dst := mustNew(t, 1, 1, RGBX8888)
			dst.Fill(framekit.RGB(100, 100, 100))

			dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{Blend: tt.blend})
			wantPixel(t, dst, 0, 0, tt.want)
		})
	}
}

func TestDrawImageIndexed(t *testing.T) {
	src := mustNew(t, 3, 1, Indexed8)
	copy(src.Bytes(), []byte{0, 1, 2})
	palette := []framekit.Color{framekit.Transparent, red, green}

	dst := mustNew(t, 3, 1, RGBX8888)
	dst.Fill(blue)
	dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{Palette: palette})

	wantPixel(t, dst, 0, 0, blue)
	wantPixel(t, dst, 1, 0, red)
	wantPixel(t, dst, 2, 0, green)

	dst.DrawImage(src, framekit.Point{}, framekit.Point{}, ImageOptions{})
	wantPixel(t, dst, 2, 0, framekit.RGB(2, 2, 2))
}

func TestDrawFilledImage(t *testing.T) {
	stencil := mustNew(t, 2, 1, A8)
	copy(stencil.Bytes(), []byte{0xFF, 0x00})

	dst := mustNew(t, 2, 1, RGBX8888)
	dst.DrawFilledImage(stencil, framekit.Point{}, framekit.Point{}, green, ImageOptions{})

	wantPixel(t, dst, 0, 0, green)
	wantPixel(t, dst, 1, 0, framekit.Black)
}

func TestDrawGlyph(t *testing.T) {
	mask := mustNew(t, 3, 1, A8)
	copy(mask.Bytes(), []byte{0xFF, 0x80, 0x00})

	t.Run("blend formula", func(t *testing.T) {
		dst := mustNew(t, 3, 1, RGBX8888)
		dst.Fill(framekit.RGB(0, 0, 200))
		dst.DrawGlyph(mask, framekit.Point{}, framekit.Point{}, framekit.RGB(255, 255, 0), nil, framekit.Point{})

		// a = 0x80: (255*128 + 0*127)/255 = 128, (0*128 + 200*127)/255 = 99
		wantPixel(t, dst, 0, 0, framekit.RGB(255, 255, 0))
		wantPixel(t, dst, 1, 0, framekit.RGB(128, 128, 99))
		wantPixel(t, dst, 2, 0, framekit.RGB(0, 0, 200))
	})

	t.Run("foreground alpha scales mask", func(t *testing.T) {
		dst := mustNew(t, 3, 1, RGBX8888)
		dst.DrawGlyph(mask, framekit.Point{}, framekit.Point{}, framekit.RGBA(255, 255, 255, 0), nil, framekit.Point{})
		wantPixel(t, dst, 0, 0, framekit.Black)
	})

	t.Run("backing drawn first at its hot spot", func(t *testing.T) {
		backing := mustNew(t, 5, 3, RGBX8888)
		backing.Fill(blue)
		dst := mustNew(t, 8, 8, RGBX8888)
		dst.DrawGlyph(mask, framekit.Point{}, framekit.Pt(3, 3), red, backing, framekit.Pt(1, 1))

		wantPixel(t, dst, 2, 2, blue)
		wantPixel(t, dst, 6, 4, blue)
		wantPixel(t, dst, 3, 3, red)
		wantPixel(t, dst, 5, 3, blue)
		wantPixel(t, dst, 1, 2, framekit.Black)
	})
}
