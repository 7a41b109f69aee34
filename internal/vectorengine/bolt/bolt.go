// Package bolt provides a bbolt-backed vector engine. One top-level bucket
// per collection, brute-force cosine search; suitable for single-binary use
// where an external engine is unavailable.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine"
)

// Engine is a bbolt-backed vectorengine.Engine.
type Engine struct {
	db *bbolt.DB
}

// storedEntry is the persisted form of a collection entry.
type storedEntry struct {
	Text     string            `json:"t"`
	Vector   []float32         `json:"v"`
	Metadata map[string]string `json:"m,omitempty"`
}

// Open opens (or creates) the bolt database at path.
func Open(path string) (*Engine, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &Engine{db: db}, nil
}

// GetOrCreateCollection returns the named collection, creating its bucket if
// absent.
func (e *Engine) GetOrCreateCollection(_ context.Context, name string) (vectorengine.Collection, error) {
	err := e.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection bucket: %w", err)
	}
	return &collection{db: e.db, name: name}, nil
}

// ListCollections returns every top-level bucket name.
func (e *Engine) ListCollections(_ context.Context) ([]string, error) {
	var names []string
	err := e.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteCollection drops the collection's bucket. Missing buckets are a no-op.
func (e *Engine) DeleteCollection(_ context.Context, name string) error {
	return e.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if err == bbolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}

// Close closes the underlying database.
func (e *Engine) Close() error { return e.db.Close() }

type collection struct {
	db   *bbolt.DB
	name string
}

func (c *collection) Name() string { return c.name }

func (c *collection) Add(_ context.Context, entries []vectorengine.Entry) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.name))
		if b == nil {
			return fmt.Errorf("collection %q not found", c.name)
		}
		for _, entry := range entries {
			data, err := json.Marshal(storedEntry{
				Text:     entry.Text,
				Vector:   entry.Vector,
				Metadata: entry.Metadata,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(entry.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *collection) Get(_ context.Context, filter map[string]string) ([]vectorengine.Entry, error) {
	var out []vectorengine.Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			if !matchesFilter(stored.Metadata, filter) {
				return nil
			}
			out = append(out, vectorengine.Entry{
				ID:       string(k),
				Text:     stored.Text,
				Vector:   stored.Vector,
				Metadata: stored.Metadata,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collection) Query(_ context.Context, vector []float32, n int) ([]vectorengine.Match, error) {
	var matches []vectorengine.Match
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil
			}
			matches = append(matches, vectorengine.Match{
				ID:       string(k),
				Text:     stored.Text,
				Distance: vectorengine.CosineDistance(vector, stored.Vector),
				Metadata: stored.Metadata,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
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
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.name))
		if b == nil {
			return nil
		}
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *collection) Count(_ context.Context) (int, error) {
	count := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.name))
		if b == nil {
			return nil
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}
