package drawqueue

import (
	"fmt"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/assets"
	"github.com/gogpu/framekit/canvas"
)

// Target lends framebuffer canvases to the dispatcher. The canvases are
// valid only inside fn.
type Target interface {
	// Borrow calls fn with the canvas of screen s. It returns an error and
	// does not call fn when s is invalid or no framebuffers exist.
	Borrow(s framekit.Screen, fn func(c *canvas.Canvas)) error

	// BorrowPair calls fn with the canvases of dst and src. When dst and
	// src name the same screen both arguments are the same canvas.
	BorrowPair(dst, src framekit.Screen, fn func(dst, src *canvas.Canvas)) error

	// ReinitVideo recreates the video pipeline, keeping framebuffer
	// contents.
	ReinitVideo() error
}

// Dispatcher executes commands against a Target, resolving asset handles
// through a Provider. It holds the scissor state set by scissor commands,
// which applies to the MAIN screen only.
//
// A Dispatcher is used from the render goroutine only.
type Dispatcher struct {
	target Target
	assets assets.Provider

	scissor   framekit.Rect
	scissorOn bool

	warn framekit.OnceLog
}

// NewDispatcher returns a dispatcher drawing to t. p may be nil, in which
// case every command that references an asset is skipped.
func NewDispatcher(t Target, p assets.Provider) *Dispatcher {
	return &Dispatcher{target: t, assets: p}
}

// Scissor returns the current MAIN screen clip and whether it is enabled.
func (d *Dispatcher) Scissor() (framekit.Rect, bool) {
	return d.scissor, d.scissorOn
}

// Execute implements Executor.
func (d *Dispatcher) Execute(cmd Command) {
	switch c := cmd.(type) {
	case LineCommand:
		d.draw(c.Screen, func(cv *canvas.Canvas) {
			cv.DrawLine(c.X1, c.Y1, c.X2, c.Y2, c.Color)
		})

	case RectCommand:
		d.draw(c.Screen, func(cv *canvas.Canvas) {
			cv.DrawRect(c.Rect, c.Color)
		})

	case FillRectCommand:
		d.draw(c.Screen, func(cv *canvas.Canvas) {
			cv.FillRect(c.Rect, c.Color)
		})

	case ImageCommand:
		d.executeImage(c)

	case FilledImageCommand:
		img, ok := d.image(c.Image)
		if !ok {
			return
		}
		opts := canvas.ImageOptions{Scale: c.Scale, Mode: c.Mode}
		if img.Mipmap != nil {
			opts.Mipmap = img.Mipmap.Canvas
		}
		d.draw(c.Screen, func(cv *canvas.Canvas) {
			cv.DrawFilledImage(img.Canvas, img.HotSpot, c.At, c.Color, opts)
		})

	case GlyphCommand:
		d.executeGlyph(c)

	case CopyCommand:
		err := d.target.BorrowPair(c.Dst, c.Src, func(dst, src *canvas.Canvas) {
			d.applyScissor(c.Dst, dst)
			dst.Copy(src, c.SrcRect, c.At)
		})
		d.borrowFailed(cmd, err)

	case CopyToImageCommand:
		img, ok := d.image(c.Image)
		if !ok {
			return
		}
		err := d.target.Borrow(c.Screen, func(cv *canvas.Canvas) {
			cv.CopyTo(img.Canvas, c.Rect)
		})
		d.borrowFailed(cmd, err)

	case ScissorEnableCommand:
		d.scissor, d.scissorOn = c.Rect, true

	case ScissorDisableCommand:
		d.scissor, d.scissorOn = framekit.Rect{}, false

	case SetMipmapCommand:
		if d.assets != nil {
			d.assets.SetMipmap(c.Image, c.Mipmap, c.HotSpot)
		}

	case DeleteImageCommand:
		if d.assets != nil {
			d.assets.DeleteImage(c.Image)
		}

	case DeleteDataCommand:
		if d.assets != nil {
			d.assets.DeleteData(c.Data)
		}

	case WaitForSignalCommand:
		if c.Signal != nil {
			c.Signal.Fire()
		}

	case ReinitVideoCommand:
		if err := d.target.ReinitVideo(); err != nil {
			d.warn.Warn("drawqueue.reinit", "video reinit failed", "err", err)
		}

	case CallbackCommand:
		d.callback(c.Fn)

	default:
		if cmd == nil {
			return
		}
		d.warn.Warn(fmt.Sprintf("drawqueue.unknown.%d", cmd.Type()),
			"unknown draw command skipped", "type", cmd.Type().String())
	}
}

func (d *Dispatcher) executeImage(c ImageCommand) {
	img, ok := d.image(c.Image)
	if !ok {
		return
	}
	opts := canvas.ImageOptions{
		Scale:   c.Scale,
		Mode:    c.Mode,
		Blend:   c.Blend,
		Palette: img.Palette,
	}
	if c.ColorMap.IsValid() && d.assets != nil {
		if pal, ok := d.assets.Palette(c.ColorMap); ok {
			opts.Palette = pal
		}
	}
	if img.Mipmap != nil {
		opts.Mipmap = img.Mipmap.Canvas
	}
	d.draw(c.Screen, func(cv *canvas.Canvas) {
		cv.DrawImage(img.Canvas, img.HotSpot, c.At, opts)
	})
}

func (d *Dispatcher) executeGlyph(c GlyphCommand) {
	if d.assets == nil {
		return
	}
	var (
		mask       *canvas.Canvas
		hot        framekit.Point
		backing    *canvas.Canvas
		backingHot framekit.Point
	)
	if g, ok := d.assets.Glyph(c.Char); ok {
		mask, hot = g.Mask, g.HotSpot
	}
	if c.Backing.IsValid() {
		if img, ok := d.assets.Image(c.Backing); ok {
			backing, backingHot = img.Canvas, img.HotSpot
		}
	}
	if mask == nil && backing == nil {
		return
	}
	d.draw(c.Screen, func(cv *canvas.Canvas) {
		cv.DrawGlyph(mask, hot, c.At, c.Color, backing, backingHot)
	})
}

// draw borrows screen s with the scissor state applied.
func (d *Dispatcher) draw(s framekit.Screen, fn func(cv *canvas.Canvas)) {
	err := d.target.Borrow(s, func(cv *canvas.Canvas) {
		d.applyScissor(s, cv)
		fn(cv)
	})
	if err != nil {
		framekit.Logger().Debug("draw command skipped", "screen", s, "err", err)
	}
}

func (d *Dispatcher) applyScissor(s framekit.Screen, cv *canvas.Canvas) {
	if s == framekit.ScreenMain && d.scissorOn {
		cv.SetScissor(d.scissor)
		return
	}
	cv.ClearScissor()
}

func (d *Dispatcher) borrowFailed(cmd Command, err error) {
	if err != nil {
		framekit.Logger().Debug("draw command skipped", "type", cmd.Type().String(), "err", err)
	}
}

func (d *Dispatcher) image(ref assets.ImageRef) (*assets.Image, bool) {
	if d.assets == nil || !ref.IsValid() {
		return nil, false
	}
	img, ok := d.assets.Image(ref)
	if !ok || img == nil || img.Canvas == nil {
		return nil, false
	}
	return img, true
}

// callback runs fn, containing a panic so one faulty callback cannot stop
// the render loop.
func (d *Dispatcher) callback(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.warn.Warn("drawqueue.callback", "draw queue callback panicked", "panic", r)
		}
	}()
	fn()
}
