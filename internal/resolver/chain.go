package resolver

import (
	"context"
	"sync"

	"github.com/jonathan/urlimport/internal/types"
)

// Chain consults finders in registration order and returns the first answer.
type Chain struct {
	mu      sync.RWMutex
	finders []Finder
}

// NewChain creates a chain of finders.
func NewChain(finders ...Finder) *Chain {
	return &Chain{finders: finders}
}

// Append adds a finder of last resort.
func (c *Chain) Append(f Finder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finders = append(c.finders, f)
}

// Finders returns the finders in order.
func (c *Chain) Finders() []Finder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Finder(nil), c.finders...)
}

// Name implements Finder.
func (c *Chain) Name() string {
	return "chain"
}

// Find implements Finder.
func (c *Chain) Find(ctx context.Context, req types.Request) (Loader, bool) {
	for _, f := range c.Finders() {
		if l, ok := f.Find(ctx, req); ok {
			return l, true
		}
	}
	return nil, false
}

// Invalidate implements Finder.
func (c *Chain) Invalidate() {
	for _, f := range c.Finders() {
		f.Invalidate()
	}
}
