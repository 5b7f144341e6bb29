// Package engine wires the draw queue, dispatcher, compositor, asset store
// and fade engine into one System with an explicit lifecycle.
//
// Producers push commands on System.Queue from any goroutine. The render
// goroutine calls RenderFrame once per display refresh, which drains the
// queue into the framebuffers and composites the frame:
//
//	sys, err := engine.New(engine.DefaultConfig())
//	if err != nil { ... }
//	if err := sys.Init(); err != nil { ... }
//	defer sys.Shutdown()
//
//	go producer(sys.Queue())
//	for running {
//		sys.RenderFrame(engine.FrameOptions{})
//	}
//
// Run drives RenderFrame itself, handing the loop to backends that own it.
package engine
