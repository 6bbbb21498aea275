package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequentialIDs hands out "<prefix>-1", "<prefix>-2", ... in call order.
//
// Unlike server.FixedGenerator it never runs out, which suits tests that
// send an unknown number of requests.
//
// Thread-safety: safe for concurrent use.
type SequentialIDs struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialIDs creates a generator. An empty prefix means "req".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "req"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

// Reset restarts the sequence at 1.
func (g *SequentialIDs) Reset() {
	g.n.Store(0)
}
