package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIIDs_DefaultPrefix(t *testing.T) {
	g := NewSequentialIIDs("")
	assert.Equal(t, "0x000001", g.NewIID())
	assert.Equal(t, "0x000002", g.NewIID())
	assert.Equal(t, int64(2), g.Issued())
}

func TestSequentialIIDs_Reset(t *testing.T) {
	g := NewSequentialIIDs("iid-")
	g.NewIID()
	g.NewIID()

	g.Reset()
	assert.Equal(t, int64(0), g.Issued())
	assert.Equal(t, "iid-000001", g.NewIID())
}

func TestSequentialIIDs_ThreadSafe(t *testing.T) {
	g := NewSequentialIIDs("")
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				iid := g.NewIID()
				mu.Lock()
				seen[iid] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, numGoroutines*callsPerGoroutine, "IIDs must be unique")
	assert.Equal(t, int64(numGoroutines*callsPerGoroutine), g.Issued())
}
