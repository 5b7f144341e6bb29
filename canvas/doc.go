// Package canvas provides bounds-checked drawing primitives over pixel
// memory that is either owned by the canvas or borrowed from a caller.
//
// A Canvas created with FromRaw is a view: it never reallocates, every write
// honors the row stride, and it must not outlive the borrow of the memory it
// wraps. Coordinates and rectangles are clipped to the canvas bounds and to
// the active scissor rectangle before any write, so out-of-range input is a
// silent no-op rather than an error.
//
// Canvas is not safe for concurrent use. The owner of the memory serializes
// access, typically by handing a canvas to one callback at a time.
package canvas
