package framekit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for framekit and all its sub-packages.
// By default, framekit produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by framekit:
//   - [slog.LevelDebug]: per-call diagnostics (queue stats, texture sizes)
//   - [slog.LevelInfo]: lifecycle events (initialize, teardown, scaler selection)
//   - [slog.LevelWarn]: recoverable failures (backend step failed, unknown command)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	framekit.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	framekit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by framekit.
// Sub-packages (drawqueue/, compositor/, backend/...) call this to share the
// same logger configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// OnceLog emits each distinct site's warning at most once.
//
// Render loops hit the same failure every frame; OnceLog keeps the first
// occurrence and drops the rest until Reset is called.
// The zero value is ready to use and safe for concurrent use.
type OnceLog struct {
	seen sync.Map
}

// Warn logs msg at warn level unless site has already been logged.
// It reports whether the message was emitted.
func (o *OnceLog) Warn(site, msg string, args ...any) bool {
	if _, loaded := o.seen.LoadOrStore(site, struct{}{}); loaded {
		return false
	}
	Logger().Warn(msg, append([]any{"site", site}, args...)...)
	return true
}

// Seen reports whether site has been logged.
func (o *OnceLog) Seen(site string) bool {
	_, ok := o.seen.Load(site)
	return ok
}

// Reset forgets every logged site.
func (o *OnceLog) Reset() {
	o.seen.Range(func(k, _ any) bool {
		o.seen.Delete(k)
		return true
	})
}
