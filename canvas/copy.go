package canvas

import (
	"github.com/gogpu/framekit"
	intImage "github.com/gogpu/framekit/internal/image"
)

// Copy copies srcRect of src to dst on c, replacing destination pixels.
//
// A zero width or height selects the full source extent on that axis;
// negative extents copy nothing. The source rectangle is clipped to src's
// bounds and the destination to c's bounds and scissor; the copied area is
// what survives both. When src and c share memory the source region is
// staged through a temporary buffer first, so overlapping regions copy as
// if read before any write.
func (c *Canvas) Copy(src *Canvas, srcRect framekit.Rect, dst framekit.Point) {
	if src == nil || srcRect.Extent.W < 0 || srcRect.Extent.H < 0 {
		return
	}
	if srcRect.Extent.W == 0 {
		srcRect.Corner.X, srcRect.Extent.W = 0, src.Width()
	}
	if srcRect.Extent.H == 0 {
		srcRect.Corner.Y, srcRect.Extent.H = 0, src.Height()
	}

	clipped := srcRect.Intersect(src.Bounds())
	if clipped.Empty() {
		return
	}
	dst = dst.Add(clipped.Corner.Sub(srcRect.Corner))

	target := framekit.Rect{Corner: dst, Extent: clipped.Extent}.Intersect(c.clip())
	if target.Empty() {
		return
	}
	from := clipped.Corner.Add(target.Corner.Sub(dst))
	w, h := target.Extent.W, target.Extent.H

	in := src.buf.SubImage(from.X, from.Y, w, h)
	if c.SharesMemory(src) {
		staged := intImage.GetFromDefault(w, h, in.Format())
		defer intImage.PutToDefault(staged)
		copyRows(staged, in)
		in = staged
	}
	copyRows(c.buf.SubImage(target.Corner.X, target.Corner.Y, w, h), in)
}

// CopyTo copies region r of c into dst at its origin.
func (c *Canvas) CopyTo(dst *Canvas, r framekit.Rect) {
	if dst == nil {
		return
	}
	dst.Copy(c, r, framekit.Point{})
}

// copyRows copies equal-sized buffers, converting pixels when the formats
// differ.
func copyRows(dst, src *intImage.ImageBuf) {
	df, sf := dst.Format(), src.Format()
	if df == sf {
		for y := range dst.Height() {
			copy(dst.RowBytes(y), src.RowBytes(y))
		}
		return
	}

	dbpp, sbpp := df.BytesPerPixel(), sf.BytesPerPixel()
	for y := range dst.Height() {
		drow, srow := dst.RowBytes(y), src.RowBytes(y)
		for x := range dst.Width() {
			r, g, b, a := intImage.DecodePixel(srow[x*sbpp:], sf)
			intImage.EncodePixel(drow[x*dbpp:], df, r, g, b, a)
		}
	}
}
