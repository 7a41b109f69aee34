// Package ingest orchestrates the ingestion pipeline: extract or fetch,
// chunk, embed and store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/chunker"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/extractor"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/fetcher"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/store"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// Batch status values reported per unit.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Archiver persists the original upload and its extracted text. A nil
// Archiver disables archiving.
type Archiver interface {
	StoreDocument(ctx context.Context, collection, documentName string, original []byte, extractedText string) error
}

// Config holds ingestion configuration.
type Config struct {
	MaxChunkSize int
	FollowLinks  bool
	MaxLinks     int
}

// Service runs the ingestion pipeline for files and URLs.
type Service struct {
	extractor *extractor.Extractor
	fetcher   *fetcher.Fetcher
	store     *store.Store
	archiver  Archiver
	config    Config
}

// New creates a Service. archiver may be nil.
func New(ex *extractor.Extractor, f *fetcher.Fetcher, st *store.Store, archiver Archiver, config Config) *Service {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = 1000
	}
	return &Service{
		extractor: ex,
		fetcher:   f,
		store:     st,
		archiver:  archiver,
		config:    config,
	}
}

// IngestFile extracts, chunks and stores one document. The chunk count is
// returned. folder may be empty.
func (s *Service) IngestFile(ctx context.Context, path, collection, folder string) (int, error) {
	slog.Info("processing document", "path", path, "collection", collection)

	text, err := s.extractor.Extract(path)
	if err != nil {
		return 0, err
	}

	chunks := chunker.Chunk(text, s.config.MaxChunkSize)

	documentName := filepath.Base(path)
	metadata := map[string]string{
		models.MetaDocumentName: documentName,
		models.MetaSourceType:   "file",
	}
	if folder != "" {
		metadata[models.MetaFolderName] = folder
	}

	n, err := s.store.Upsert(ctx, collection, models.FileIdentifier(path), chunks, metadata)
	if err != nil {
		return 0, err
	}

	s.archiveFile(ctx, path, collection, documentName, text)

	slog.Info("document stored", "document", documentName, "collection", collection, "chunks", n)
	return n, nil
}

// archiveFile uploads the original file and its extracted text. Archiving is
// best effort; a failure never fails the ingestion that already succeeded.
func (s *Service) archiveFile(ctx context.Context, path, collection, documentName, text string) {
	if s.archiver == nil {
		return
	}

	original, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read original for archiving", "path", path, "error", err)
		return
	}
	if err := s.archiver.StoreDocument(ctx, collection, documentName, original, text); err != nil {
		slog.Warn("failed to archive document", "document", documentName, "error", err)
	}
}

// IngestURL fetches, chunks and stores one web page or online PDF. The page
// title becomes the stored document name so web content lists alongside file
// uploads.
func (s *Service) IngestURL(ctx context.Context, rawURL, collection string) (int, error) {
	slog.Info("processing url", "url", rawURL, "collection", collection)

	result, err := s.fetcher.Fetch(ctx, rawURL, s.config.FollowLinks, s.config.MaxLinks)
	if err != nil {
		return 0, err
	}

	chunks := chunker.Chunk(result.Text, s.config.MaxChunkSize)

	metadata := make(map[string]string, len(result.Metadata)+1)
	for k, v := range result.Metadata {
		metadata[k] = v
	}
	documentName := metadata[models.MetaTitle]
	if documentName == "" {
		documentName = rawURL
	}
	metadata[models.MetaDocumentName] = documentName

	n, err := s.store.Upsert(ctx, collection, models.URLIdentifier(rawURL), chunks, metadata)
	if err != nil {
		return 0, err
	}

	slog.Info("url stored", "url", rawURL, "collection", collection, "chunks", n)
	return n, nil
}

// IngestURLs processes a batch of URLs. A failing URL never aborts the batch;
// the returned list has exactly one status entry per input URL, in order.
func (s *Service) IngestURLs(ctx context.Context, urls []string, collection string) []models.DocumentStatus {
	statuses := make([]models.DocumentStatus, 0, len(urls))
	for _, rawURL := range urls {
		n, err := s.IngestURL(ctx, rawURL, collection)
		if err != nil {
			slog.Warn("url failed", "url", rawURL, "error", err)
			statuses = append(statuses, models.DocumentStatus{
				Source: rawURL,
				Status: StatusError,
				Error:  err.Error(),
			})
			continue
		}
		statuses = append(statuses, models.DocumentStatus{
			Source: rawURL,
			Status: StatusSuccess,
			Chunks: n,
		})
	}
	return statuses
}

// IngestText chunks and stores already-extracted text under the given
// document name. Used by the site crawler, which produces text without a
// backing file.
func (s *Service) IngestText(ctx context.Context, text, documentName, collection string, metadata map[string]string) (int, error) {
	chunks := chunker.Chunk(text, s.config.MaxChunkSize)

	merged := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		merged[k] = v
	}
	merged[models.MetaDocumentName] = documentName

	identifier := merged[models.MetaSource]
	if identifier == "" {
		return 0, fmt.Errorf("metadata %q is required to derive a document identifier", models.MetaSource)
	}

	return s.store.Upsert(ctx, collection, models.URLIdentifier(identifier), chunks, merged)
}
