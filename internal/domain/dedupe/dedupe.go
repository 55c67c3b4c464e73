// Package dedupe guards scheduled work against firing twice for the same instant.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Guard records fire keys so each scheduled instant runs at most once.
type Guard interface {
	// SeenAndRecord reports whether key was already recorded and records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the instant may be attempted again, e.g. when
	// the work could not be handed to the event loop.
	Unrecord(ctx context.Context, key string)

	Size() int
}

// FireKey identifies one firing of a trigger: "reveal@2025-07-02T21:00:00-04:00".
func FireKey(trigger string, at time.Time) string {
	return trigger + "@" + at.Format(time.RFC3339)
}

// memoryGuard keeps the most recent keys; once full the oldest key is dropped.
// With maxSize <= 0 nothing is ever dropped.
type memoryGuard struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
}

const defaultMaxSize = 256

// NewGuard creates an in-memory guard.
func NewGuard(opts ...Option) Guard {
	g := &memoryGuard{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *memoryGuard) SeenAndRecord(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; ok {
		return true
	}
	if g.maxSize > 0 && g.order.Len() >= g.maxSize {
		oldest := g.order.Front()
		g.order.Remove(oldest)
		delete(g.seen, oldest.Value.(string))
	}
	g.seen[key] = g.order.PushBack(key)
	return false
}

func (g *memoryGuard) Unrecord(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if el, ok := g.seen[key]; ok {
		g.order.Remove(el)
		delete(g.seen, key)
	}
}

func (g *memoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.order.Len()
}
