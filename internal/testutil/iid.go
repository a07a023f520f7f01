package testutil

import (
	"fmt"
	"sync"
)

// SequentialIIDs hands out predictable IIDs for tests.
//
// Unlike the UUID generator used by default, SequentialIIDs can be reset so
// the same scenario produces the same IIDs on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialIIDs creates a generator whose first IID is prefix + "000001".
//
// If prefix is empty, "0x" is used.
func NewSequentialIIDs(prefix string) *SequentialIIDs {
	if prefix == "" {
		prefix = "0x"
	}
	return &SequentialIIDs{prefix: prefix}
}

// NewIID returns the next IID.
func (g *SequentialIIDs) NewIID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%06d", g.prefix, g.seq)
}

// Issued returns how many IIDs have been handed out since the last Reset.
func (g *SequentialIIDs) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence.
func (g *SequentialIIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
