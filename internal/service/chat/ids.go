package chat

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator derives message ids from the creation time in milliseconds.
// Ids created within the same millisecond, or while the clock steps back,
// are bumped past the previous one so they stay unique and increasing.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

// Next returns the id for a message created at t.
func (g *IDGenerator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := t.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
