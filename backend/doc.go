// Package backend provides the pluggable presentation backend abstraction.
//
// A Backend owns a window (or an in-memory surface) and a set of textures.
// The compositor uploads framebuffers into textures and composites them
// with Copy, FillRect and Present.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Import the implementation packages for their side effect:
//
//	import _ "github.com/gogpu/framekit/backend/software"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or NewBackend() to
// request a specific backend by name:
//
//	b, err := backend.NewBackend("software")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Available Backends
//
//   - "software": in-memory image.RGBA surface (always available)
//   - "ebiten": ebiten window (excluded by the headless build tag)
//   - "sdl": SDL2 renderer (requires the sdl build tag and cgo)
package backend
