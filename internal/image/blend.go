package image

// BlendMode selects how a source color is combined with a destination pixel.
type BlendMode uint8

const (
	// BlendReplace overwrites the destination.
	BlendReplace BlendMode = iota

	// BlendOver performs straight-alpha source-over blending.
	BlendOver

	// BlendAdditive adds the source color scaled by its alpha, saturating at 255.
	BlendAdditive
)

var blendModeNames = [...]string{
	BlendReplace:  "Replace",
	BlendOver:     "Over",
	BlendAdditive: "Additive",
}

// String returns a string representation of the blend mode.
func (m BlendMode) String() string {
	if int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return "Unknown"
}

// BlendPixel combines (r, g, b, a) into the pixel p of format f.
// Mask and indexed formats are written as-is regardless of mode.
func BlendPixel(p []byte, f Format, r, g, b, a uint8, mode BlendMode) {
	if f.IsMask() || f.IsIndexed() {
		EncodePixel(p, f, r, g, b, a)
		return
	}

	switch mode {
	case BlendReplace:
		EncodePixel(p, f, r, g, b, a)

	case BlendOver:
		if a == 0 {
			return
		}
		if a == 0xFF {
			EncodePixel(p, f, r, g, b, 0xFF)
			return
		}
		dr, dg, db, da := DecodePixel(p, f)
		outA := uint8(uint16(a) + uint16(da)*uint16(255-a)/255)
		EncodePixel(p, f, Mix(r, dr, a), Mix(g, dg, a), Mix(b, db, a), outA)

	case BlendAdditive:
		dr, dg, db, da := DecodePixel(p, f)
		EncodePixel(p, f, addSat(dr, r, a), addSat(dg, g, a), addSat(db, b, a), da)
	}
}

// Mix returns (src*a + dst*(255-a)) / 255.
func Mix(src, dst, a uint8) uint8 {
	return uint8((uint16(src)*uint16(a) + uint16(dst)*uint16(255-a)) / 255)
}

// MulDiv255 returns a*b/255.
func MulDiv255(a, b uint8) uint8 {
	return uint8(uint16(a) * uint16(b) / 255)
}

func addSat(dst, src, a uint8) uint8 {
	v := uint16(dst) + uint16(src)*uint16(a)/255
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}
