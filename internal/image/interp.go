package image

import "math"

// InterpolationMode defines how source pixels are sampled when scaling.
type InterpolationMode uint8

const (
	// InterpNearest selects the closest pixel (no interpolation).
	InterpNearest InterpolationMode = iota

	// InterpBilinear interpolates between the 4 neighboring pixels.
	InterpBilinear
)

// String returns a string representation of the interpolation mode.
func (m InterpolationMode) String() string {
	switch m {
	case InterpNearest:
		return "Nearest"
	case InterpBilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Sample samples img at pixel-space coordinates (fx, fy), where pixel
// centers lie at half-integers. Out-of-bounds coordinates clamp to the edge.
func Sample(img *ImageBuf, fx, fy float64, mode InterpolationMode) (r, g, b, a byte) {
	if mode == InterpBilinear {
		return SampleBilinear(img, fx, fy)
	}
	return SampleNearest(img, fx, fy)
}

// SampleNearest returns the pixel containing (fx, fy).
func SampleNearest(img *ImageBuf, fx, fy float64) (r, g, b, a byte) {
	w, h := img.Bounds()
	x := clamp(int(math.Floor(fx)), 0, w-1)
	y := clamp(int(math.Floor(fy)), 0, h-1)
	return img.GetRGBA(x, y)
}

// SampleBilinear interpolates the 4 pixels around (fx, fy).
func SampleBilinear(img *ImageBuf, fx, fy float64) (r, g, b, a byte) {
	w, h := img.Bounds()

	fx -= 0.5
	fy -= 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clamp(x0+1, 0, w-1)
	y1 := clamp(y0+1, 0, h-1)
	x0 = clamp(x0, 0, w-1)
	y0 = clamp(y0, 0, h-1)

	r00, g00, b00, a00 := img.GetRGBA(x0, y0)
	r10, g10, b10, a10 := img.GetRGBA(x1, y0)
	r01, g01, b01, a01 := img.GetRGBA(x0, y1)
	r11, g11, b11, a11 := img.GetRGBA(x1, y1)

	r = lerp2D(r00, r10, r01, r11, tx, ty)
	g = lerp2D(g00, g10, g01, g11, tx, ty)
	b = lerp2D(b00, b10, b01, b11, tx, ty)
	a = lerp2D(a00, a10, a01, a11, tx, ty)
	return r, g, b, a
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func lerp2D(v00, v10, v01, v11 byte, tx, ty float64) byte {
	top := float64(v00) + (float64(v10)-float64(v00))*tx
	bottom := float64(v01) + (float64(v11)-float64(v01))*tx
	return byte(math.Round(top + (bottom-top)*ty))
}
