package assets

import (
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/canvas"
)

// GlyphSource renders characters into A8 glyph masks.
type GlyphSource interface {
	// Glyph renders r. Characters without a visible shape return a Glyph
	// with a nil Mask. Unknown characters report false.
	Glyph(r rune) (*Glyph, bool)

	// LineHeight is the distance between baselines.
	LineHeight() int
}

// faceSource renders glyphs from an x/image font face.
type faceSource struct {
	mu   sync.Mutex
	face font.Face
}

// BasicFont returns the 7x13 fixed bitmap font from x/image.
func BasicFont() GlyphSource {
	return FaceSource(basicfont.Face7x13)
}

// FaceSource adapts any x/image font face.
func FaceSource(face font.Face) GlyphSource {
	return &faceSource{face: face}
}

func (s *faceSource) LineHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.face.Metrics().Height.Ceil()
}

func (s *faceSource) Glyph(r rune) (*Glyph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dr, mask, maskp, advance, ok := s.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil, false
	}
	g := &Glyph{Advance: advance.Round()}
	if dr.Empty() || mask == nil {
		return g, true
	}

	m, err := canvas.New(dr.Dx(), dr.Dy(), canvas.A8)
	if err != nil {
		return nil, false
	}
	for y := range dr.Dy() {
		for x := range dr.Dx() {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			if a != 0 {
				m.SetPixel(x, y, framekit.RGBA(0xFF, 0xFF, 0xFF, uint8(a>>8)))
			}
		}
	}
	g.Mask = m
	g.HotSpot = framekit.Pt(-dr.Min.X, -dr.Min.Y)
	return g, true
}

// tinySource renders glyphs from a tinyfont font by drawing them into a
// mask-backed display.
type tinySource struct {
	mu   sync.Mutex
	font tinyfont.Fonter
}

// TinyFont adapts a tinyfont font, such as &freemono.Bold9pt7b.
func TinyFont(f tinyfont.Fonter) GlyphSource {
	return &tinySource{font: f}
}

func (s *tinySource) LineHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.font.GetYAdvance())
}

func (s *tinySource) Glyph(r rune) (*Glyph, bool) {
	// Fonters may reuse one glyph value between calls.
	s.mu.Lock()
	defer s.mu.Unlock()

	glyph := s.font.GetGlyph(r)
	if glyph == nil {
		return nil, false
	}
	info := glyph.Info()
	w, h := int(info.Width), int(info.Height)
	g := &Glyph{Advance: int(info.XAdvance)}
	if w == 0 || h == 0 {
		return g, g.Advance > 0
	}

	m, err := canvas.New(w, h, canvas.A8)
	if err != nil {
		return nil, false
	}
	d := &maskDisplay{mask: m, ox: int(info.XOffset), oy: int(info.YOffset)}
	glyph.Draw(d, 0, 0, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})

	g.Mask = m
	g.HotSpot = framekit.Pt(-d.ox, -d.oy)
	return g, true
}

// maskDisplay is a drivers.Displayer whose origin is the glyph's pen
// position; (ox, oy) is the mask's top-left corner relative to the pen.
type maskDisplay struct {
	mask   *canvas.Canvas
	ox, oy int
}

var _ drivers.Displayer = (*maskDisplay)(nil)

func (d *maskDisplay) Size() (x, y int16) {
	return int16(d.mask.Width()), int16(d.mask.Height())
}

func (d *maskDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.mask.SetPixel(int(x)-d.ox, int(y)-d.oy, framekit.RGBA(0xFF, 0xFF, 0xFF, c.A))
}

func (d *maskDisplay) Display() error {
	return nil
}

// TextWidth returns the advance of s in a tinyfont font.
func TextWidth(f tinyfont.Fonter, s string) int {
	_, outbox := tinyfont.LineWidth(f, s)
	return int(outbox)
}
