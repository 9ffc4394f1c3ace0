package review

import "sync"

// Guard tracks records with a resolution in flight across reviewer
// sessions. A single reviewer guards its own actions; callers that build
// a reviewer per request (the HTTP server) share one Guard so concurrent
// resolutions touching the same record are rejected instead of racing
// the store.
type Guard struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{busy: make(map[string]bool)}
}

// Acquire reserves the given record IDs and returns a release func. If
// any ID is already reserved, nothing is taken and ErrRecordBusy is
// returned.
func (g *Guard) Acquire(ids ...string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range ids {
		if g.busy[id] {
			return nil, ErrRecordBusy
		}
	}
	for _, id := range ids {
		g.busy[id] = true
	}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for _, id := range ids {
			delete(g.busy, id)
		}
	}, nil
}
