package notification

import (
	"context"
	"sync"
)

// RecordingGateway keeps every push it is asked to send. Err, when set, is
// returned from Send after recording.
type RecordingGateway struct {
	mu     sync.Mutex
	pushes []Push
	Err    error
}

func (g *RecordingGateway) Send(_ context.Context, p Push) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pushes = append(g.pushes, p)
	return g.Err
}

// Pushes returns a copy of what was sent so far.
func (g *RecordingGateway) Pushes() []Push {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Push(nil), g.pushes...)
}
