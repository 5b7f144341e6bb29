package scaler

// YUV thresholds for the HQ similarity test.
const (
	hqThresholdY = 48
	hqThresholdU = 7
	hqThresholdV = 6
	hqThresholdA = 48
)

func yuv(p rgba) (y, u, v int) {
	r, g, b := int(p[0]), int(p[1]), int(p[2])
	y = (299*r + 587*g + 114*b) / 1000
	u = -(169*r+331*g-500*b)/1000 + 128
	v = (500*r-419*g-81*b)/1000 + 128
	return y, u, v
}

// similar reports whether two pixels are close in YUV space.
func similar(a, b rgba) bool {
	if a == b {
		return true
	}
	ya, ua, va := yuv(a)
	yb, ub, vb := yuv(b)
	return absInt(ya-yb) <= hqThresholdY &&
		absInt(ua-ub) <= hqThresholdU &&
		absInt(va-vb) <= hqThresholdV &&
		absInt(int(a[3])-int(b[3])) <= hqThresholdA
}

// hqCorner decides the colour an edge contributes to the corner (sx, sy)
// of the centre pixel. It reports false when the corner keeps the centre.
func hqCorner(n *neighbourhood, sx, sy int) (rgba, bool) {
	vert, horiz, diag := n.corner(sx, sy)
	if !similar(vert, horiz) || similar(n.e, vert) || similar(n.e, horiz) {
		return rgba{}, false
	}
	if similar(diag, vert) {
		return avg4(diag, vert, horiz, n.e), true
	}
	return avg4(n.e, n.e, vert, horiz), true
}

// hqBlock writes the f x f output block for one source pixel.
func hqBlock(dst []byte, dstW, ox, oy, f int, n *neighbourhood) {
	depth := f / 2

	var edges [4]rgba
	var active [4]bool
	for k, s := range cornerSigns {
		edges[k], active[k] = hqCorner(n, s[0], s[1])
	}

	for j := range f {
		sy, dv := side(j, f)
		row := (oy + j) * dstW
		for i := range f {
			sx, dh := side(i, f)
			out := n.e
			if k := cornerIndex(sx, sy); k >= 0 && active[k] {
				out = lerp(n.e, edges[k], 256*(dh+dv-depth)/depth)
			}
			store(dst, (row+ox+i)*4, out)
		}
	}
}

// cornerSigns lists the corners in cornerIndex order.
var cornerSigns = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

func cornerIndex(sx, sy int) int {
	if sx == 0 || sy == 0 {
		return -1
	}
	k := 0
	if sx > 0 {
		k++
	}
	if sy > 0 {
		k += 2
	}
	return k
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
