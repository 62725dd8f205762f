package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/friendfinder/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Queued is a queue of IDs to hand out before falling back to id-N
	Queued []string
	count  int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued ID, or id-1, id-2, ... once the queue is empty
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count++
	if len(g.Queued) > 0 {
		id := g.Queued[0]
		g.Queued = g.Queued[1:]
		return id
	}
	return fmt.Sprintf("id-%d", g.count)
}

// Queue adds IDs to the queue
func (g *MockIDs) Queue(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queued = append(g.Queued, values...)
}
