// Package idgen hands out local keyword identifiers.
//
// An identifier is the creation time in Unix milliseconds, rendered in
// decimal. Two identifiers issued within the same millisecond are pushed
// forward so the sequence is strictly increasing for the life of the
// generator.
package idgen

import (
	"strconv"
	"sync"
	"time"
)

type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// New returns a generator reading the given clock. A nil clock means time.Now.
func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns the next identifier.
func (g *Generator) Next() string {
	return strconv.FormatInt(g.NextInt(), 10)
}

// NextInt returns the next identifier as an integer.
func (g *Generator) NextInt() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// Observe moves the generator past an identifier issued elsewhere, e.g. one
// read back from the local cache of a previous session.
func (g *Generator) Observe(id string) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return
	}
	g.mu.Lock()
	if n > g.last {
		g.last = n
	}
	g.mu.Unlock()
}
