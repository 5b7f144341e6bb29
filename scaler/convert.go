package scaler

// ToScalerOrder converts native X, B, G, R pixels in src into R, G, B, A
// order in dst, carrying X in A. Only whole pixels of the shorter slice are
// converted. dst and src may be the same slice.
func ToScalerOrder(dst, src []byte) {
	reverse4(dst, src)
}

// FromScalerOrder converts R, G, B, A pixels in src back into native
// X, B, G, R order in dst. It is the exact inverse of ToScalerOrder.
func FromScalerOrder(dst, src []byte) {
	reverse4(dst, src)
}

func reverse4(dst, src []byte) {
	n := min(len(dst), len(src)) &^ 3
	for i := 0; i < n; i += 4 {
		a, b, c, d := src[i], src[i+1], src[i+2], src[i+3]
		dst[i], dst[i+1], dst[i+2], dst[i+3] = d, c, b, a
	}
}
