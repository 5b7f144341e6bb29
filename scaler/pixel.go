package scaler

// rgba is one pixel in scaler order.
type rgba [4]uint8

func load(buf []byte, i int) rgba {
	return rgba{buf[i], buf[i+1], buf[i+2], buf[i+3]}
}

func store(buf []byte, i int, p rgba) {
	buf[i], buf[i+1], buf[i+2], buf[i+3] = p[0], p[1], p[2], p[3]
}

// lerp mixes a toward b by w/256.
func lerp(a, b rgba, w int) rgba {
	var out rgba
	for c := range out {
		out[c] = uint8((int(a[c])*(256-w) + int(b[c])*w) >> 8)
	}
	return out
}

// avg4 returns the rounded mean of four pixels.
func avg4(p0, p1, p2, p3 rgba) rgba {
	var out rgba
	for c := range out {
		out[c] = uint8((int(p0[c]) + int(p1[c]) + int(p2[c]) + int(p3[c]) + 2) >> 2)
	}
	return out
}

// neighbourhood is the 3x3 block around a source pixel, edge-clamped.
//
//	a b c
//	d e f
//	g h i
type neighbourhood struct {
	a, b, c, d, e, f, g, h, i rgba
}

func gather(src []byte, w, h, x, y int) neighbourhood {
	xl, xr := max(x-1, 0), min(x+1, w-1)
	yu, yd := max(y-1, 0), min(y+1, h-1)
	at := func(px, py int) rgba { return load(src, (py*w+px)*4) }
	return neighbourhood{
		a: at(xl, yu), b: at(x, yu), c: at(xr, yu),
		d: at(xl, y), e: at(x, y), f: at(xr, y),
		g: at(xl, yd), h: at(x, yd), i: at(xr, yd),
	}
}

// corner returns the vertical, horizontal and diagonal neighbours of the
// centre toward the corner (sx, sy), each sign being -1 or +1.
func (n *neighbourhood) corner(sx, sy int) (vert, horiz, diag rgba) {
	switch {
	case sx < 0 && sy < 0:
		return n.b, n.d, n.a
	case sx > 0 && sy < 0:
		return n.b, n.f, n.c
	case sx < 0 && sy > 0:
		return n.h, n.d, n.g
	default:
		return n.h, n.f, n.i
	}
}

// side classifies sub-pixel k of f along one axis: -1 for the first half,
// +1 for the second and 0 for the middle of an odd factor. depth counts
// sub-pixels away from the centre; f/2 is the outermost.
func side(k, f int) (sign, depth int) {
	switch twice := 2*k + 1; {
	case twice < f:
		return -1, f/2 - k
	case twice > f:
		return 1, k - (f-1)/2
	default:
		return 0, 0
	}
}
