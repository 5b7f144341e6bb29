// Package framekit is the presentation-and-drawing core of a 2D game renderer.
//
// # Overview
//
// Game logic running on one or more producer goroutines pushes draw commands
// into a bounded queue. A single render goroutine flushes the queue, applying
// each command to one of three fixed-size framebuffers through a pixel canvas,
// and then composites the framebuffers into one presented frame per display
// refresh.
//
// # Architecture
//
// The module is organized into:
//   - canvas: bounds-checked, stride-aware drawing primitives over borrowed memory
//   - drawqueue: the cross-goroutine command queue with batching and backpressure
//   - scaler: HQ-style and xBRZ-style 2x/3x/4x software scalers
//   - compositor: the per-frame state machine and presentation backend contract
//   - backend/software, backend/ebiten, backend/sdl: presentation backends
//   - assets, fade: asset provider and fade/colormap collaborators
//   - engine: the process-owned state object tying the pieces together
//
// This package holds the value types shared by all of them (points, rects,
// colors, screens), the error taxonomy and the logger hook.
//
// # Framebuffers
//
// There are exactly three screens: [ScreenMain] is composited every frame,
// [ScreenExtra] is an auxiliary buffer that is never composited, and
// [ScreenTransition] holds a snapshot used for cross-fades.
//
// # Logging
//
// framekit is silent by default. Call [SetLogger] to route diagnostics to any
// [log/slog] handler.
package framekit
