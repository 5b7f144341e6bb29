//go:build sdl

package main

import (
	"runtime"

	_ "github.com/gogpu/framekit/backend/sdl"
)

// SDL must be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}
