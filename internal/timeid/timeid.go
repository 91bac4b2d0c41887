// Package timeid hands out ids derived from the wall clock in milliseconds.
package timeid

import (
	"sync"
	"time"
)

// Generator returns strictly increasing ids. Two calls within the same
// millisecond get consecutive values instead of colliding.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Now exposes the generator's clock.
func (g *Generator) Now() time.Time { return g.now() }
