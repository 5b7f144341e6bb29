package main

import (
	"context"
	"fmt"

	"tinygo.org/x/tinyfont/freemono"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/assets"
	"github.com/gogpu/framekit/canvas"
	"github.com/gogpu/framekit/drawqueue"
	"github.com/gogpu/framekit/engine"
)

// Font pages registered in the asset store.
const (
	pageBasic uint32 = iota
	pageMono
)

const statusHeight = 20

var bandColors = []framekit.Color{
	framekit.RGB(0x1d, 0x3b, 0x53),
	framekit.RGB(0x7e, 0x25, 0x53),
	framekit.RGB(0x00, 0x87, 0x51),
	framekit.RGB(0xab, 0x52, 0x36),
	framekit.RGB(0x5f, 0x57, 0x4f),
}

// scene is the picture the producers draw. Each producer owns one
// horizontal band of MAIN; producer 0 also draws the status bar and the
// TRANSITION panel.
type scene struct {
	store  *assets.Store
	w, h   int
	n      int
	sprite assets.ImageRef
	status framekit.Rect
	panel  framekit.Rect

	tick int // render goroutine only
}

func newScene(store *assets.Store, w, h, producers int) (*scene, error) {
	store.AddFont(pageBasic, assets.BasicFont())
	store.AddFont(pageMono, assets.TinyFont(&freemono.Bold9pt7b))

	cv, err := canvas.New(16, 16, canvas.RGBA8)
	if err != nil {
		return nil, err
	}
	for y := range 16 {
		for x := range 16 {
			if (x/4+y/4)%2 == 0 {
				cv.SetPixel(x, y, framekit.White)
			} else {
				cv.SetPixel(x, y, framekit.RGBA(0xff, 0x80, 0x00, 0xa0))
			}
		}
	}
	sprite, err := store.AddImage(cv, framekit.Pt(8, 8))
	if err != nil {
		return nil, err
	}

	return &scene{
		store:  store,
		w:      w,
		h:      h,
		n:      producers,
		sprite: sprite,
		status: framekit.RectXYWH(0, h-statusHeight, w, statusHeight),
		panel:  framekit.RectXYWH(w/4, h/4, w/2, h/4),
	}, nil
}

// band returns the part of MAIN producer i draws.
func (s *scene) band(i int) framekit.Rect {
	bh := (s.h - statusHeight) / s.n
	r := framekit.RectXYWH(0, i*bh, s.w, bh)
	if i == s.n-1 {
		r.Extent.H = s.h - statusHeight - r.Corner.Y
	}
	return r
}

// produce pushes producer i's part of the scene as one batch and waits
// until the render goroutine has drawn it.
func (s *scene) produce(ctx context.Context, q *drawqueue.Queue, i int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	check := func(e error) {
		if err == nil {
			err = e
		}
	}

	band := s.band(i)
	q.Batched(func() {
		check(q.PushFillRect(framekit.ScreenMain, band, bandColors[i%len(bandColors)]))
		check(q.PushRect(framekit.ScreenMain, band, framekit.White))

		step := band.Extent.W / 8
		for k := range 8 {
			x := band.Corner.X + k*step
			check(q.PushLine(framekit.ScreenMain, x, band.Max().Y-1, x+step, band.Corner.Y,
				framekit.RGB(0xff, 0xec, 0x27)))
		}

		mid := band.Corner.Y + band.Extent.H/2
		check(q.PushImage(framekit.ScreenMain, s.sprite, framekit.Pt(band.Max().X-16, mid), nil))
		check(q.PushFilledImage(framekit.ScreenMain, s.sprite, framekit.Pt(band.Max().X-36, mid),
			framekit.RGB(0x29, 0xad, 0xff), 0, canvas.ScaleNearest))

		s.text(q, framekit.ScreenMain, pageBasic, fmt.Sprintf("producer %d", i),
			framekit.Pt(band.Corner.X+4, band.Corner.Y+13), framekit.White, check)

		if i == 0 {
			s.overlay(q, check)
		}
	})
	if err != nil {
		return err
	}
	return q.PushWaitForSignalContext(ctx)
}

// overlay draws the status bar on MAIN and the panel on TRANSITION.
func (s *scene) overlay(q *drawqueue.Queue, check func(error)) {
	check(q.PushFillRect(framekit.ScreenMain, s.status, framekit.Black))
	msg := "framekit"
	x := (s.w - assets.TextWidth(&freemono.Bold9pt7b, msg)) / 2
	s.text(q, framekit.ScreenMain, pageMono, msg, framekit.Pt(x, s.h-6), framekit.White, check)

	check(q.PushFillRect(framekit.ScreenTransition, s.panel, framekit.RGB(0xff, 0xf1, 0xe8)))
	check(q.PushRect(framekit.ScreenTransition, s.panel, framekit.Black))
	s.text(q, framekit.ScreenTransition, pageBasic, "transition",
		framekit.Pt(s.panel.Corner.X+6, s.panel.Corner.Y+16), framekit.Black, check)
}

// text pushes one glyph command per rune, advancing the pen by the glyph
// advance.
func (s *scene) text(q *drawqueue.Queue, scr framekit.Screen, page uint32, msg string, at framekit.Point, col framekit.Color, check func(error)) {
	for _, r := range msg {
		ref := assets.FontCharRef{Page: page, Char: r}
		check(q.PushGlyph(scr, ref, at, col, assets.ImageRef(assets.InvalidRef)))
		if g, ok := s.store.Glyph(ref); ok {
			at.X += g.Advance
		}
	}
}

// frameOptions pulses the transition panel and keeps the status bar above
// the fade.
func (s *scene) frameOptions() engine.FrameOptions {
	s.tick++
	return engine.FrameOptions{
		Transition:     uint8(0x40 + (s.tick*4)%0x80), // #nosec G115 -- bounded by 0xc0
		TransitionClip: &s.panel,
		SystemBox:      &s.status,
	}
}
