// Package vectorengine defines the contract for the opaque vector-storage
// engine: named collections supporting batch add, filtered get, similarity
// query and deletion.
package vectorengine

import "context"

// Entry is one stored item: a chunk's text, its embedding and its metadata.
type Entry struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// Match is one similarity-query result. Distance is a cosine distance: 0 for
// identical direction, growing as vectors diverge.
type Match struct {
	ID       string
	Text     string
	Distance float64
	Metadata map[string]string
}

// Collection is a named, isolated set of entries.
type Collection interface {
	Name() string

	// Add writes all entries in one batch. Existing ids are overwritten.
	Add(ctx context.Context, entries []Entry) error

	// Get returns entries whose metadata matches every key/value in filter.
	// A nil or empty filter returns all entries.
	Get(ctx context.Context, filter map[string]string) ([]Entry, error)

	// Query returns the n entries nearest to vector, ordered by ascending
	// distance.
	Query(ctx context.Context, vector []float32, n int) ([]Match, error)

	// Delete removes the entries with the given ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)
}

// Engine is the opaque vector-storage service. Collections are created lazily
// on first write and enumerable at any time.
type Engine interface {
	// GetOrCreateCollection returns the named collection, creating it if
	// absent.
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)

	// ListCollections returns the names of all existing collections.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection removes a collection and all its entries. Deleting a
	// nonexistent collection is a no-op.
	DeleteCollection(ctx context.Context, name string) error

	Close() error
}
