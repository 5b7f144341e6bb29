package canvas

import (
	stdimage "image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/framekit"
	intImage "github.com/gogpu/framekit/internal/image"
)

// ScaleIdentity is the Scale value that draws an image at its own size.
// Scale is expressed in 1/256 units.
const ScaleIdentity = 256

// MaxScale is the largest Scale honored. Larger values draw at MaxScale.
const MaxScale = ScaleIdentity << 12

// ScaleMode selects the filter for scaled image draws.
type ScaleMode uint8

const (
	// ScaleNearest picks the closest source pixel.
	ScaleNearest ScaleMode = iota

	// ScaleBilinear interpolates the 4 nearest source pixels.
	ScaleBilinear

	// ScaleTrilinear picks a mipmap level for the scale and filters it
	// bilinearly.
	ScaleTrilinear
)

var scaleModeNames = [...]string{
	ScaleNearest:   "Nearest",
	ScaleBilinear:  "Bilinear",
	ScaleTrilinear: "Trilinear",
}

// String returns the mode name.
func (m ScaleMode) String() string {
	if int(m) < len(scaleModeNames) {
		return scaleModeNames[m]
	}
	return "Unknown"
}

// BlendKind selects how image pixels combine with the destination.
type BlendKind uint8

const (
	// BlendNormal replaces opaque sources and blends sources with alpha.
	BlendNormal BlendKind = iota

	// BlendAdditive adds the source scaled by its alpha and the factor.
	BlendAdditive

	// BlendAlpha blends the source over the destination with its alpha
	// scaled by the factor.
	BlendAlpha
)

// DrawMode is a blend kind with its 0-255 factor. The factor is ignored
// by BlendNormal.
type DrawMode struct {
	Kind   BlendKind
	Factor uint8
}

// Additive returns an additive DrawMode.
func Additive(factor uint8) DrawMode {
	return DrawMode{Kind: BlendAdditive, Factor: factor}
}

// Alpha returns a translucent DrawMode.
func Alpha(factor uint8) DrawMode {
	return DrawMode{Kind: BlendAlpha, Factor: factor}
}

// ImageOptions controls DrawImage and DrawFilledImage.
type ImageOptions struct {
	// Scale in 1/256 units. Zero means ScaleIdentity; negative values draw
	// nothing. Values above MaxScale are clamped.
	Scale int

	// Mode is the filter used when Scale is not the identity.
	Mode ScaleMode

	// Blend selects how pixels combine with the destination.
	Blend DrawMode

	// Palette resolves Indexed8 sources. Indices past its end, or any index
	// when Palette is nil, read as opaque gray.
	Palette []framekit.Color

	// Mipmap is a pre-reduced copy of the source used by trilinear draws at
	// half scale or below. When nil a chain is generated on demand.
	Mipmap *Canvas
}

func (o ImageOptions) scale() int {
	if o.Scale == 0 {
		return ScaleIdentity
	}
	return min(o.Scale, MaxScale)
}

// pixelFunc writes one source sample into a destination pixel.
type pixelFunc func(dst []byte, r, g, b, a uint8)

// DrawImage draws src with its hot spot at the given position. Sources with
// alpha (RGBA8, A8, or Indexed8 with a translucent palette) are blended over
// the destination; RGBX sources overwrite it under BlendNormal.
func (c *Canvas) DrawImage(src *Canvas, hot, at framekit.Point, opts ImageOptions) {
	if src == nil {
		return
	}
	f := c.buf.Format()
	sourceAlpha := src.format.HasAlpha() || (src.format == Indexed8 && opts.Palette != nil)

	var put pixelFunc
	switch opts.Blend.Kind {
	case BlendAdditive:
		factor := opts.Blend.Factor
		put = func(dst []byte, r, g, b, a uint8) {
			intImage.BlendPixel(dst, f, r, g, b, intImage.MulDiv255(a, factor), intImage.BlendAdditive)
		}
	case BlendAlpha:
		factor := opts.Blend.Factor
		put = func(dst []byte, r, g, b, a uint8) {
			intImage.BlendPixel(dst, f, r, g, b, intImage.MulDiv255(a, factor), intImage.BlendOver)
		}
	default:
		mode := intImage.BlendReplace
		if sourceAlpha {
			mode = intImage.BlendOver
		}
		put = func(dst []byte, r, g, b, a uint8) {
			intImage.BlendPixel(dst, f, r, g, b, a, mode)
		}
	}
	c.blit(src, hot, at, opts, put)
}

// DrawFilledImage uses src as a stencil and paints its covered pixels with
// col. Coverage is the source alpha; RGBX sources cover their whole area.
func (c *Canvas) DrawFilledImage(src *Canvas, hot, at framekit.Point, col framekit.Color, opts ImageOptions) {
	if src == nil || col.A == 0 {
		return
	}
	f := c.buf.Format()
	c.blit(src, hot, at, opts, func(dst []byte, _, _, _, a uint8) {
		intImage.BlendPixel(dst, f, col.R, col.G, col.B, intImage.MulDiv255(a, col.A), intImage.BlendOver)
	})
}

// DrawGlyph draws a glyph mask at the given position in color fg. When
// backing is non-nil it is drawn first with its own hot spot, so the glyph
// lands on top of it. Each channel becomes (fg*a + dst*(255-a)) / 255 with
// a = mask*fg.A/255.
func (c *Canvas) DrawGlyph(mask *Canvas, hot, at framekit.Point, fg framekit.Color, backing *Canvas, backingHot framekit.Point) {
	if backing != nil {
		c.DrawImage(backing, backingHot, at, ImageOptions{})
	}
	if mask == nil || fg.A == 0 {
		return
	}
	f := c.buf.Format()
	c.blit(mask, hot, at, ImageOptions{}, func(dst []byte, _, _, _, a uint8) {
		a = intImage.MulDiv255(a, fg.A)
		if a == 0 {
			return
		}
		dr, dg, db, da := intImage.DecodePixel(dst, f)
		intImage.EncodePixel(dst, f,
			intImage.Mix(fg.R, dr, a), intImage.Mix(fg.G, dg, a), intImage.Mix(fg.B, db, a), max(da, a))
	})
}

// blit maps src onto c at (at - hot*scale) and calls put for every
// destination pixel inside the clip.
func (c *Canvas) blit(src *Canvas, hot, at framekit.Point, opts ImageOptions, put pixelFunc) {
	scale := opts.scale()
	if scale <= 0 {
		return
	}
	sw, sh := src.Width(), src.Height()
	dw := max(1, sw*scale/ScaleIdentity)
	dh := max(1, sh*scale/ScaleIdentity)

	origin := framekit.Pt(at.X-hot.X*scale/ScaleIdentity, at.Y-hot.Y*scale/ScaleIdentity)
	dst := framekit.Rect{Corner: origin, Extent: framekit.Extent{W: dw, H: dh}}.Intersect(c.clip())
	if dst.Empty() {
		return
	}

	buf := resolve(src, opts.Palette)
	identity := scale == ScaleIdentity
	base := origin
	if !identity && opts.Mode != ScaleNearest {
		// Only the visible window of the scaled image is resampled.
		win := dst.Translate(framekit.Pt(-origin.X, -origin.Y))
		scaled := smoothScale(buf, dw, dh, win, scale, opts)
		if buf != src.buf {
			intImage.PutToDefault(buf)
		}
		buf = scaled
		base = dst.Corner
		identity = true
	}
	defer func() {
		if buf != src.buf {
			intImage.PutToDefault(buf)
		}
	}()

	sf := buf.Format()
	bpp := c.buf.Format().BytesPerPixel()
	sbpp := sf.BytesPerPixel()
	for y := dst.Corner.Y; y < dst.Corner.Y+dst.Extent.H; y++ {
		sy := y - base.Y
		if !identity {
			sy = min(sy*ScaleIdentity/scale, sh-1)
		}
		srow := buf.RowBytes(sy)
		off := c.buf.PixelOffset(dst.Corner.X, y)
		drow := c.buf.Data()[off : off+dst.Extent.W*bpp]
		for i := range dst.Extent.W {
			sx := dst.Corner.X + i - base.X
			if !identity {
				sx = min(sx*ScaleIdentity/scale, sw-1)
			}
			r, g, b, a := intImage.DecodePixel(srow[sx*sbpp:], sf)
			put(drow[i*bpp:(i+1)*bpp], r, g, b, a)
		}
	}
}

// resolve returns a buffer in a color or mask format. Indexed sources are
// expanded through the palette into a pooled RGBA8 buffer.
func resolve(src *Canvas, palette []framekit.Color) *intImage.ImageBuf {
	if src.format != Indexed8 {
		return src.buf
	}
	w, h := src.Width(), src.Height()
	out := intImage.GetFromDefault(w, h, intImage.FormatRGBA8)
	for y := range h {
		in := src.buf.RowBytes(y)
		row := out.RowBytes(y)
		for x, idx := range in {
			col := framekit.RGB(idx, idx, idx)
			if int(idx) < len(palette) {
				col = palette[idx]
			}
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = col.R, col.G, col.B, col.A
		}
	}
	return out
}

// smoothScale resamples the window win of buf scaled to dw x dh with
// x/image/draw and returns it as a pooled RGBA8 buffer of win's size with
// straight alpha.
func smoothScale(buf *intImage.ImageBuf, dw, dh int, win framekit.Rect, scale int, opts ImageOptions) *intImage.ImageBuf {
	level := buf
	if opts.Mode == ScaleTrilinear && scale < ScaleIdentity {
		if opts.Mipmap != nil && scale <= ScaleIdentity/2 {
			level = resolve(opts.Mipmap, opts.Palette)
			defer func() {
				if level != opts.Mipmap.buf {
					intImage.PutToDefault(level)
				}
			}()
		} else if chain := intImage.GenerateMipmaps(buf); chain != nil {
			defer chain.Release()
			level = chain.LevelForScale(float64(scale) / ScaleIdentity)
		}
	}

	in := level.ToStdImage()
	lo, hi := win.Min(), win.Max()
	tmp := stdimage.NewRGBA(stdimage.Rect(lo.X, lo.Y, hi.X, hi.Y))
	m := f64.Aff3{
		float64(dw) / float64(level.Width()), 0, 0,
		0, float64(dh) / float64(level.Height()), 0,
	}
	draw.BiLinear.Transform(tmp, m, in, in.Bounds(), draw.Src, nil)

	ww, wh := win.Extent.W, win.Extent.H
	out := intImage.GetFromDefault(ww, wh, intImage.FormatRGBA8)
	for y := range wh {
		row := out.RowBytes(y)
		copy(row, tmp.Pix[y*tmp.Stride:y*tmp.Stride+ww*4])
		for i := 0; i < len(row); i += 4 {
			unpremultiply(row[i : i+4])
		}
	}
	return out
}

func unpremultiply(p []byte) {
	a := uint16(p[3])
	if a == 0 || a == 0xFF {
		return
	}
	p[0] = uint8(min(uint16(p[0])*0xFF/a, 0xFF))
	p[1] = uint8(min(uint16(p[1])*0xFF/a, 0xFF))
	p[2] = uint8(min(uint16(p[2])*0xFF/a, 0xFF))
}
