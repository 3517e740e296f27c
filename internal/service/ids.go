package service

import (
	"strconv"
	"sync"
	"time"
)

// MillisIDs issues decimal Unix-millisecond identifiers. Two calls within the
// same millisecond, or a clock that steps back, still get increasing values.
// The zero value is ready to use.
type MillisIDs struct {
	mu   sync.Mutex
	last int64
}

// Next returns the identifier for an entity created at now
func (g *MillisIDs) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
