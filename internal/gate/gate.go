// Package gate lets work run until a one-time close, then rejects new work and waits
// for the work already admitted.
package gate

import (
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("closed")
)

// Gate admits work until Close is called.
type Gate struct {
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// New creates an open Gate.
func New() *Gate {
	return &Gate{}
}

// Do runs f unless the gate is closed. Close waits for every f admitted by Do.
func (g *Gate) Do(f func()) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		return ErrClosed
	}

	f()
	return nil
}

// Close stops admitting work, waits for running calls to Do, then runs f.
// Only the first Close runs f.
func (g *Gate) Close(f func()) {
	g.once.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		g.closed = true
		f()
	})
}
