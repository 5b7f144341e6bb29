package backend

import (
	"fmt"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/canvas"
	intImage "github.com/gogpu/framekit/internal/image"
)

// UnpackRGBA converts a w×h block of format f, laid out in rows of stride
// bytes, into tightly packed R, G, B, A bytes in dst. With premultiplied
// set the color channels are scaled by alpha. Indexed pixels carry no
// palette and are rejected.
func UnpackRGBA(dst, src []byte, w, h, stride int, f canvas.Format, premultiplied bool) error {
	inf, ok := internalFormat(f)
	if !ok || f == canvas.Indexed8 {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if len(dst) < w*h*4 {
		return fmt.Errorf("%w: destination %d bytes for %dx%d", framekit.ErrInvalidArgument, len(dst), w, h)
	}
	in, err := intImage.FromRaw(src, w, h, inf, stride)
	if err != nil {
		return err
	}
	bpp := inf.BytesPerPixel()
	for y := range h {
		row := in.RowBytes(y)
		out := dst[y*w*4 : (y+1)*w*4]
		for x := range w {
			r, g, b, a := intImage.DecodePixel(row[x*bpp:], inf)
			if premultiplied && a != 0xFF {
				r = intImage.MulDiv255(r, a)
				g = intImage.MulDiv255(g, a)
				b = intImage.MulDiv255(b, a)
			}
			out[x*4], out[x*4+1], out[x*4+2], out[x*4+3] = r, g, b, a
		}
	}
	return nil
}

// SupportsFormat reports whether textures of format f can be created.
func SupportsFormat(f canvas.Format) bool {
	_, ok := internalFormat(f)
	return ok && f != canvas.Indexed8
}

func internalFormat(f canvas.Format) (intImage.Format, bool) {
	switch f {
	case canvas.RGBX8888:
		return intImage.FormatRGBX8888, true
	case canvas.RGBA8:
		return intImage.FormatRGBA8, true
	case canvas.A8:
		return intImage.FormatA8, true
	case canvas.Indexed8:
		return intImage.FormatIndexed8, true
	}
	return 0, false
}
