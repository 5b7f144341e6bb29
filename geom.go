package framekit

import "fmt"

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Pt is a convenience function to create a Point.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Extent is a width and height in pixels. Either may be negative when it
// comes from caller input; drawing code treats negative extents as empty.
type Extent struct {
	W, H int
}

// Rect is a rectangle given by its top-left corner and extent.
type Rect struct {
	Corner Point
	Extent Extent
}

// RectXYWH creates a Rect from corner and size.
func RectXYWH(x, y, w, h int) Rect {
	return Rect{Corner: Point{X: x, Y: y}, Extent: Extent{W: w, H: h}}
}

// Min returns the top-left corner.
func (r Rect) Min() Point {
	return r.Corner
}

// Max returns the exclusive bottom-right corner.
func (r Rect) Max() Point {
	return Point{X: r.Corner.X + r.Extent.W, Y: r.Corner.Y + r.Extent.H}
}

// Empty reports whether the rectangle covers no pixels.
// Negative extents are empty.
func (r Rect) Empty() bool {
	return r.Extent.W <= 0 || r.Extent.H <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Corner.X && p.X < r.Corner.X+r.Extent.W &&
		p.Y >= r.Corner.Y && p.Y < r.Corner.Y+r.Extent.H
}

// Intersect returns the largest rectangle contained in both r and s.
// The result is the zero Rect when they do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	if r.Empty() || s.Empty() {
		return Rect{}
	}
	x0 := max(r.Corner.X, s.Corner.X)
	y0 := max(r.Corner.Y, s.Corner.Y)
	x1 := min(r.Corner.X+r.Extent.W, s.Corner.X+s.Extent.W)
	y1 := min(r.Corner.Y+r.Extent.H, s.Corner.Y+s.Extent.H)
	if x0 >= x1 || y0 >= y1 {
		return Rect{}
	}
	return RectXYWH(x0, y0, x1-x0, y1-y0)
}

// Overlaps reports whether r and s share at least one pixel.
func (r Rect) Overlaps(s Rect) bool {
	return !r.Intersect(s).Empty()
}

// Translate returns r moved by p.
func (r Rect) Translate(p Point) Rect {
	r.Corner = r.Corner.Add(p)
	return r
}

// String returns a compact representation for logs.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.Corner.X, r.Corner.Y, r.Extent.W, r.Extent.H)
}

// Color is an 8-bit per channel RGBA color with straight (non-premultiplied) alpha.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xFF}
}

// RGBA creates a color with the given alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(0xFF, 0xFF, 0xFF)
	Transparent = Color{}
)

// IsOpaque reports whether the alpha channel is fully opaque.
func (c Color) IsOpaque() bool {
	return c.A == 0xFF
}

// RGBA implements color.Color so values can be handed to image/draw.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * uint32(c.A) / 0xFF
	g = uint32(c.G) * uint32(c.A) / 0xFF
	b = uint32(c.B) * uint32(c.A) / 0xFF
	a = uint32(c.A)
	return r | r<<8, g | g<<8, b | b<<8, a | a<<8
}

// Screen selects one of the framebuffers.
type Screen int

const (
	// ScreenMain is the framebuffer composited every frame.
	ScreenMain Screen = iota
	// ScreenExtra is an auxiliary framebuffer that is never composited.
	ScreenExtra
	// ScreenTransition holds the snapshot used for cross-fade transitions.
	ScreenTransition

	// NumScreens is the number of framebuffer slots.
	NumScreens = 3
)

var screenNames = [...]string{
	ScreenMain:       "Main",
	ScreenExtra:      "Extra",
	ScreenTransition: "Transition",
}

// Valid reports whether s addresses an existing framebuffer slot.
func (s Screen) Valid() bool {
	return s >= 0 && s < NumScreens
}

// String returns the screen name.
func (s Screen) String() string {
	if s.Valid() {
		return screenNames[s]
	}
	return fmt.Sprintf("Screen(%d)", int(s))
}

// Framebuffer dimensions used by DefaultConfig of the compositor.
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)
