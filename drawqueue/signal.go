package drawqueue

import "sync"

// Signal is a one-shot completion flag. The consumer fires it when it
// reaches the WaitForSignalCommand that carries it.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns an unfired signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire marks the signal satisfied. Later calls do nothing.
func (s *Signal) Fire() {
	s.once.Do(func() { close(s.done) })
}

// Done returns a channel closed when the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the signal fires.
func (s *Signal) Wait() {
	<-s.done
}

// Fired reports whether the signal has fired.
func (s *Signal) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
