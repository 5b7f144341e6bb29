// Package compositor turns framebuffers into a displayed frame.
//
// A Compositor owns three framebuffers (MAIN, EXTRA and TRANSITION), one
// backend texture per framebuffer and, when a software scaler is selected,
// an enlarged buffer and texture per framebuffer. Each frame is built by a
// fixed sequence of steps driven from the render goroutine:
//
//	c.Preprocess()
//	c.Layer(framekit.ScreenMain, 255, nil)
//	c.Layer(framekit.ScreenTransition, 255-amount, &clip)
//	c.ColorOverlay(overlay, nil)
//	c.Postprocess()
//
// Step failures are logged once per operation and abort only that step.
//
// The draw queue reaches framebuffers through Borrow and BorrowPair, which
// make Compositor a drawqueue.Target.
package compositor
