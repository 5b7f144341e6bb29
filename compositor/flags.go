package compositor

import (
	"strings"

	"github.com/gogpu/framekit/scaler"
)

// Flags selects window and scaling behavior.
type Flags uint32

const (
	Fullscreen Flags = 1 << iota
	ShowFPS
	Scanlines
	ScaleBilinear
	ScaleBiadapt
	ScaleBiadaptAdv
	ScaleTriscan
	ScaleHQXX
	ScaleXBRZ3
	ScaleXBRZ4

	// ScaleAny is every scaling flag.
	ScaleAny = ScaleBilinear | ScaleBiadapt | ScaleBiadaptAdv | ScaleTriscan |
		ScaleHQXX | ScaleXBRZ3 | ScaleXBRZ4
)

var flagNames = [...]struct {
	f    Flags
	name string
}{
	{Fullscreen, "fullscreen"},
	{ShowFPS, "showfps"},
	{Scanlines, "scanlines"},
	{ScaleBilinear, "bilinear"},
	{ScaleBiadapt, "biadapt"},
	{ScaleBiadaptAdv, "biadaptadv"},
	{ScaleTriscan, "triscan"},
	{ScaleHQXX, "hq"},
	{ScaleXBRZ3, "xbrz3"},
	{ScaleXBRZ4, "xbrz4"},
}

// Has reports whether every bit of g is set in f.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// SoftScaler returns the software scaler the flags select. Software
// scaling applies when some scale flag is set and bilinear is not; the
// backend performs bilinear filtering itself.
func (f Flags) SoftScaler() (scaler.Kind, int, bool) {
	if f&ScaleAny == 0 || f.Has(ScaleBilinear) {
		return 0, 0, false
	}
	switch {
	case f.Has(ScaleXBRZ4):
		return scaler.XBRZ, 4, true
	case f.Has(ScaleXBRZ3):
		return scaler.XBRZ, 3, true
	}
	return scaler.HQ, 2, true
}

// String lists the set flags joined by "|".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseScale maps a scaler name ("none", "bilinear", "hq", "xbrz3",
// "xbrz4", ...) to its flag. It reports false for unknown names.
func ParseScale(name string) (Flags, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return 0, true
	}
	for _, n := range flagNames {
		if n.f&ScaleAny != 0 && n.name == name {
			return n.f, true
		}
	}
	return 0, false
}
