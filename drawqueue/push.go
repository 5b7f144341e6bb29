package drawqueue

import (
	"context"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/assets"
	"github.com/gogpu/framekit/canvas"
)

// PushLine queues a line on screen s.
func (q *Queue) PushLine(s framekit.Screen, x1, y1, x2, y2 int, col framekit.Color) error {
	return q.Push(LineCommand{Screen: s, X1: x1, Y1: y1, X2: x2, Y2: y2, Color: col})
}

// PushRect queues a rectangle outline.
func (q *Queue) PushRect(s framekit.Screen, r framekit.Rect, col framekit.Color) error {
	return q.Push(RectCommand{Screen: s, Rect: r, Color: col})
}

// PushFillRect queues a filled rectangle.
func (q *Queue) PushFillRect(s framekit.Screen, r framekit.Rect, col framekit.Color) error {
	return q.Push(FillRectCommand{Screen: s, Rect: r, Color: col})
}

// ImageParams holds the optional parts of an image draw. The zero value
// draws unscaled with nearest sampling, normal blending and the image's own
// palette.
type ImageParams struct {
	ColorMap assets.ColorMapRef
	Scale    int
	Mode     canvas.ScaleMode
	Blend    canvas.DrawMode
}

// PushImage queues an image draw. Pass nil params for a plain draw.
func (q *Queue) PushImage(s framekit.Screen, img assets.ImageRef, at framekit.Point, p *ImageParams) error {
	cmd := ImageCommand{Screen: s, Image: img, At: at, ColorMap: assets.ColorMapRef(assets.InvalidRef)}
	if p != nil {
		cmd.ColorMap = p.ColorMap
		cmd.Scale = p.Scale
		cmd.Mode = p.Mode
		cmd.Blend = p.Blend
	}
	return q.Push(cmd)
}

// PushFilledImage queues an image shape filled with col.
func (q *Queue) PushFilledImage(s framekit.Screen, img assets.ImageRef, at framekit.Point, col framekit.Color, scale int, mode canvas.ScaleMode) error {
	return q.Push(FilledImageCommand{Screen: s, Image: img, At: at, Color: col, Scale: scale, Mode: mode})
}

// PushGlyph queues one font character. Pass assets.InvalidRef as backing
// for none.
func (q *Queue) PushGlyph(s framekit.Screen, ch assets.FontCharRef, at framekit.Point, col framekit.Color, backing assets.ImageRef) error {
	return q.Push(GlyphCommand{Screen: s, Char: ch, At: at, Color: col, Backing: backing})
}

// PushCopy queues a copy of srcRect on src to at on dst.
func (q *Queue) PushCopy(src, dst framekit.Screen, srcRect framekit.Rect, at framekit.Point) error {
	return q.Push(CopyCommand{Src: src, Dst: dst, SrcRect: srcRect, At: at})
}

// PushCopyToImage queues a copy of r on screen s into img.
func (q *Queue) PushCopyToImage(s framekit.Screen, r framekit.Rect, img assets.ImageRef) error {
	return q.Push(CopyToImageCommand{Screen: s, Rect: r, Image: img})
}

// PushScissorEnable queues a MAIN screen clip to r.
func (q *Queue) PushScissorEnable(r framekit.Rect) error {
	return q.Push(ScissorEnableCommand{Rect: r})
}

// PushScissorDisable queues removal of the MAIN screen clip.
func (q *Queue) PushScissorDisable() error {
	return q.Push(ScissorDisableCommand{})
}

// PushSetMipmap queues attaching mip to img.
func (q *Queue) PushSetMipmap(img, mip assets.ImageRef, hot framekit.Point) error {
	return q.Push(SetMipmapCommand{Image: img, Mipmap: mip, HotSpot: hot})
}

// PushDeleteImage queues the release of img.
func (q *Queue) PushDeleteImage(img assets.ImageRef) error {
	return q.Push(DeleteImageCommand{Image: img})
}

// PushDeleteData queues the release of a data object.
func (q *Queue) PushDeleteData(d assets.DataRef) error {
	return q.Push(DeleteDataCommand{Data: d})
}

// PushWaitForSignal queues a signal and blocks until the consumer reaches
// it, so every command pushed earlier has been dispatched on return.
//
// While any batch is open the signal stays unpublished, so the call returns
// only once that batch closes or is force-reset. A producer that holds its
// own batch open must use PushWaitForSignalContext to bound the wait.
// It returns ErrClosed if the queue closes before the signal fires.
func (q *Queue) PushWaitForSignal() error {
	return q.PushWaitForSignalContext(context.Background())
}

// PushWaitForSignalContext is PushWaitForSignal with a bounded wait. When
// ctx ends first it returns ctx.Err(); the signal stays queued and fires
// unobserved.
func (q *Queue) PushWaitForSignalContext(ctx context.Context) error {
	sig := NewSignal()
	if err := q.Push(WaitForSignalCommand{Signal: sig}); err != nil {
		return err
	}
	select {
	case <-sig.Done():
		return nil
	case <-ctx.Done():
		if sig.Fired() {
			return nil
		}
		return ctx.Err()
	case <-q.closedCh:
		// The signal may have fired just before Close.
		if sig.Fired() {
			return nil
		}
		return ErrClosed
	}
}

// PushReinitVideo queues recreation of the video pipeline.
func (q *Queue) PushReinitVideo() error {
	return q.Push(ReinitVideoCommand{})
}

// PushCallback queues fn to run on the render goroutine.
func (q *Queue) PushCallback(fn func()) error {
	return q.Push(CallbackCommand{Fn: fn})
}
