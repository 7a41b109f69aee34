// Package memory provides an in-process vector engine. It backs tests and
// throwaway runs where persistence is not needed.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine"
)

// Engine is an in-memory vectorengine.Engine.
type Engine struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{collections: make(map[string]*collection)}
}

// GetOrCreateCollection returns the named collection, creating it if absent.
func (e *Engine) GetOrCreateCollection(_ context.Context, name string) (vectorengine.Collection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.collections[name]
	if !ok {
		c = &collection{name: name, entries: make(map[string]vectorengine.Entry)}
		e.collections[name] = c
	}
	return c, nil
}

// ListCollections returns all collection names in sorted order.
func (e *Engine) ListCollections(_ context.Context) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteCollection removes a collection. Missing collections are a no-op.
func (e *Engine) DeleteCollection(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.collections, name)
	return nil
}

// Close is a no-op for the in-memory engine.
func (e *Engine) Close() error { return nil }

type collection struct {
	name    string
	mu      sync.RWMutex
	entries map[string]vectorengine.Entry
	order   []string // insertion order for stable Get results
}

func (c *collection) Name() string { return c.name }

func (c *collection) Add(_ context.Context, entries []vectorengine.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range entries {
		if _, exists := c.entries[entry.ID]; !exists {
			c.order = append(c.order, entry.ID)
		}
		c.entries[entry.ID] = entry
	}
	return nil
}

func (c *collection) Get(_ context.Context, filter map[string]string) ([]vectorengine.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []vectorengine.Entry
	for _, id := range c.order {
		entry, ok := c.entries[id]
		if !ok {
			continue
		}
		if matchesFilter(entry.Metadata, filter) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (c *collection) Query(_ context.Context, vector []float32, n int) ([]vectorengine.Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]vectorengine.Match, 0, len(c.entries))
	for _, id := range c.order {
		entry, ok := c.entries[id]
		if !ok {
			continue
		}
		matches = append(matches, vectorengine.Match{
			ID:       entry.ID,
			Text:     entry.Text,
			Distance: vectorengine.CosineDistance(vector, entry.Vector),
			Metadata: entry.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if n > 0 && n < len(matches) {
		matches = matches[:n]
	}
	return matches, nil
}

func (c *collection) Delete(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		delete(c.entries, id)
	}
	return nil
}

func (c *collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}
