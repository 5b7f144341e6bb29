package scaler

import "math"

const (
	// xbrzEqualTolerance is the distance below which two colours count as equal.
	xbrzEqualTolerance = 30.0

	// xbrzDominantRatio makes a blend dominant when one diagonal is this
	// much closer than the other.
	xbrzDominantRatio = 3.6

	xbrzLumaWeight = 1.0
)

type blendKind uint8

const (
	blendNone blendKind = iota
	blendNormal
	blendDominant
)

// colourDist is a perceptual distance in YCbCr with alpha added linearly.
func colourDist(a, b rgba) float64 {
	if a == b {
		return 0
	}
	dr := float64(int(a[0]) - int(b[0]))
	dg := float64(int(a[1]) - int(b[1]))
	db := float64(int(a[2]) - int(b[2]))

	y := 0.2126*dr + 0.7152*dg + 0.0722*db
	cb := 0.5 / (1 - 0.0722) * (db - y)
	cr := 0.5 / (1 - 0.2126) * (dr - y)

	da := math.Abs(float64(int(a[3]) - int(b[3])))
	return math.Sqrt(xbrzLumaWeight*xbrzLumaWeight*y*y+cb*cb+cr*cr) + da
}

// xbrzCorner classifies the 2x2 kernel at corner (sx, sy) of the centre.
// A blend happens when the two orthogonal neighbours are closer to each
// other than the centre is to the diagonal pixel, i.e. an edge runs between
// them and cuts the corner.
func xbrzCorner(n *neighbourhood, sx, sy int) (blendKind, rgba) {
	vert, horiz, diag := n.corner(sx, sy)

	across := colourDist(n.e, diag)
	along := colourDist(vert, horiz)
	if across < xbrzEqualTolerance || along >= across {
		return blendNone, rgba{}
	}

	col := horiz
	if colourDist(n.e, vert) < colourDist(n.e, horiz) {
		col = vert
	}
	if along*xbrzDominantRatio < across {
		return blendDominant, col
	}
	return blendNormal, col
}

// xbrzBlock writes the f x f output block for one source pixel.
func xbrzBlock(dst []byte, dstW, ox, oy, f int, n *neighbourhood) {
	depth := f / 2

	var kinds [4]blendKind
	var cols [4]rgba
	for k, s := range cornerSigns {
		kinds[k], cols[k] = xbrzCorner(n, s[0], s[1])
	}

	for j := range f {
		sy, dv := side(j, f)
		row := (oy + j) * dstW
		for i := range f {
			sx, dh := side(i, f)
			out := n.e
			if k := cornerIndex(sx, sy); k >= 0 {
				reach := dh + dv - depth
				switch kinds[k] {
				case blendDominant:
					out = lerp(n.e, cols[k], 256*(reach+1)/(depth+1))
				case blendNormal:
					out = lerp(n.e, cols[k], 128*reach/depth)
				}
			}
			store(dst, (row+ox+i)*4, out)
		}
	}
}
