// Package store wraps the opaque vector engine with collection naming,
// deterministic chunk ids, metadata filtering and dedup logic.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/embeddings"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// ErrNotFound is returned when a deletion target does not exist.
var ErrNotFound = errors.New("not found")

// DocumentInfo is one (document, folder) pair derived from chunk metadata.
type DocumentInfo struct {
	DocumentName string `json:"document_name"`
	FolderName   string `json:"folder_name,omitempty"`
}

// Store adapts the vector engine for document-chunk storage. It owns the
// embedding provider so every write path shares one fallback behavior.
type Store struct {
	engine   vectorengine.Engine
	embedder *embeddings.Provider
}

// New creates a Store over the given engine and embedding provider.
func New(engine vectorengine.Engine, embedder *embeddings.Provider) *Store {
	return &Store{engine: engine, embedder: embedder}
}

// Embedder exposes the provider for query-time embedding.
func (s *Store) Embedder() *embeddings.Provider { return s.embedder }

// Engine exposes the underlying engine for retrieval.
func (s *Store) Engine() vectorengine.Engine { return s.engine }

// Upsert embeds chunks and writes them to the collection in one batch.
// Entry ids are `<documentIdentifier>_doc_<index>`, so re-ingesting the same
// document overwrites its previous chunks instead of duplicating them.
// The collection is created lazily on first write.
func (s *Store) Upsert(ctx context.Context, collection, documentIdentifier string, chunks []string, metadata map[string]string) (int, error) {
	coll, err := s.engine.GetOrCreateCollection(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to open collection %q: %w", collection, err)
	}

	entries := make([]vectorengine.Entry, len(chunks))
	for i, text := range chunks {
		meta := make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		entries[i] = vectorengine.Entry{
			ID:       models.ChunkID(documentIdentifier, i),
			Text:     text,
			Vector:   s.embedder.Embed(ctx, text),
			Metadata: meta,
		}
	}

	if err := coll.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to add chunks to %q: %w", collection, err)
	}

	slog.Debug("chunks stored", "collection", collection, "document", documentIdentifier, "chunks", len(entries))
	return len(entries), nil
}

// Get returns entries of the collection, optionally filtered by exact-match
// metadata fields.
func (s *Store) Get(ctx context.Context, collection string, filter map[string]string) ([]vectorengine.Entry, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	coll, err := s.engine.GetOrCreateCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	return coll.Get(ctx, filter)
}

// DeleteByDocumentName removes every chunk whose metadata document_name
// matches name. Returns ErrNotFound when no chunk matches.
func (s *Store) DeleteByDocumentName(ctx context.Context, collection, name string) error {
	deleted, err := s.deleteWhere(ctx, collection, map[string]string{models.MetaDocumentName: name})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("document %q: %w", name, ErrNotFound)
	}
	slog.Info("document deleted", "collection", collection, "document", name, "chunks", deleted)
	return nil
}

// DeleteByFolder removes every chunk whose metadata folder_name matches
// folder. A folder with no matching chunks is not an error; the operation is
// idempotent.
func (s *Store) DeleteByFolder(ctx context.Context, collection, folder string) (int, error) {
	deleted, err := s.deleteWhere(ctx, collection, map[string]string{models.MetaFolderName: folder})
	if err != nil {
		return 0, err
	}
	slog.Info("folder deleted", "collection", collection, "folder", folder, "chunks", deleted)
	return deleted, nil
}

// Clear removes all entries of the collection. A nonexistent collection is a
// no-op.
func (s *Store) Clear(ctx context.Context, collection string) error {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		slog.Debug("collection does not exist, nothing to clear", "collection", collection)
		return nil
	}

	_, err = s.deleteWhere(ctx, collection, nil)
	return err
}

// ListDocuments returns deduplicated (document_name, folder_name) pairs for
// the collection, optionally restricted to one folder. One document maps to
// many chunks, so the dedup key is the pair itself.
func (s *Store) ListDocuments(ctx context.Context, collection, folder string) ([]DocumentInfo, error) {
	var filter map[string]string
	if folder != "" {
		filter = map[string]string{models.MetaFolderName: folder}
	}

	entries, err := s.Get(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[DocumentInfo]bool)
	var docs []DocumentInfo
	for _, entry := range entries {
		info := DocumentInfo{
			DocumentName: entry.Metadata[models.MetaDocumentName],
			FolderName:   entry.Metadata[models.MetaFolderName],
		}
		if info.DocumentName == "" || seen[info] {
			continue
		}
		seen[info] = true
		docs = append(docs, info)
	}
	return docs, nil
}

// deleteWhere removes entries matching filter and reports how many went away.
func (s *Store) deleteWhere(ctx context.Context, collection string, filter map[string]string) (int, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	coll, err := s.engine.GetOrCreateCollection(ctx, collection)
	if err != nil {
		return 0, err
	}

	entries, err := coll.Get(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	if err := coll.Delete(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) collectionExists(ctx context.Context, name string) (bool, error) {
	names, err := s.engine.ListCollections(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
