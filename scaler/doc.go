// Package scaler enlarges small RGBA pixel buffers by an integer factor
// with pixel-art aware filters.
//
// Two families are provided: HQ, an edge-directed filter that compares
// neighbours in YUV space, and XBRZ, a pattern-based filter that blends
// pixel corners along dominant diagonals. Both accept factors 2, 3 and 4
// and always produce exactly (w*f) x (h*f) pixels.
//
// Scalers operate on tightly packed buffers in R, G, B, A byte order.
// Framebuffers store X, B, G, R; use ToScalerOrder and FromScalerOrder
// around Scale. The X byte travels in the alpha channel so the round trip
// is exact.
package scaler
