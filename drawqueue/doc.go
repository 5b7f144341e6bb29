// Package drawqueue implements the draw command queue: a bounded FIFO that
// carries typed drawing commands from any number of producer goroutines to
// the single render goroutine that applies them to framebuffers.
//
// # Ordering
//
// Commands are dispatched in exactly the order they were pushed, across all
// producers combined. Batching only delays when commands become visible to
// the consumer; it never reorders them.
//
// # Batching
//
// Batch and Unbatch nest. While the batch depth is above zero, pushed
// commands are held back and Flush dispatches nothing. When the depth
// returns to zero every held command is published at once and Ready is
// signalled.
//
// # Backpressure
//
// Push blocks while the queue is full; it never drops a command. If the
// queue fills while a batch is open, or the backlog passes the configured
// break size, the batch is force-reset so the consumer can drain the
// queue instead of deadlocking against the blocked producer.
//
// # Dispatch
//
// Flush pops published commands in FIFO order, up to the livelock cap, and
// hands each to an Executor. Dispatcher is the standard Executor: it
// resolves asset handles and applies commands to canvas views borrowed
// from a Target.
package drawqueue
