// Package audit keeps a bounded in-memory trail of decision events per
// session. It backs deployments that run without SQLite persistence and the
// review endpoint either way.
package audit

import (
	"context"
	"sync"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
)

// DefaultLimit caps the per-session trail.
const DefaultLimit = 1000

// Log is an append-only in-memory event sink. Once a session reaches the
// limit, the oldest events are dropped first.
type Log struct {
	mu     sync.Mutex
	limit  int
	trails map[string][]core.Event
}

func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{
		limit:  limit,
		trails: make(map[string][]core.Event),
	}
}

func (l *Log) Record(_ context.Context, event core.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	trail := append(l.trails[event.SessionID], event)
	if len(trail) > l.limit {
		trail = trail[len(trail)-l.limit:]
	}
	l.trails[event.SessionID] = trail
}

// Events returns a copy of the trail for one session, oldest first.
func (l *Log) Events(sessionID string) []core.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	trail := l.trails[sessionID]
	out := make([]core.Event, len(trail))
	copy(out, trail)
	return out
}

// Drop removes the trail for a finished session.
func (l *Log) Drop(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.trails, sessionID)
}
