package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Chunk is a bounded slice of a document's extracted text, the unit of
// embedding and storage.
type Chunk struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Collection string            `json:"collection"`
	Metadata   map[string]string `json:"metadata"`
}

// RetrievalResult is a retrieved chunk with its similarity score in [0, 1].
type RetrievalResult struct {
	ChunkText  string  `json:"chunk_text"`
	Similarity float64 `json:"similarity"`
}

// DocumentStatus reports the outcome of one unit in a batch ingestion.
type DocumentStatus struct {
	Source string `json:"source"` // file path or URL
	Status string `json:"status"` // "success" or "error"
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Metadata keys attached to stored chunks.
const (
	MetaDocumentName = "document_name"
	MetaFolderName   = "folder_name"
	MetaSource       = "source"
	MetaSourceType   = "source_type"
	MetaTitle        = "title"
	MetaDomain       = "domain"
)

// UserCollection derives the collection name for a user's document store.
func UserCollection(username string) string {
	return fmt.Sprintf("user_%s_docs", username)
}

// FileIdentifier derives a stable document identifier from a file name.
// Dots are replaced so the identifier reads as a single token in chunk ids.
func FileIdentifier(path string) string {
	return strings.ReplaceAll(filepath.Base(path), ".", "_")
}

// URLIdentifier derives a stable document identifier from a URL.
func URLIdentifier(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// ChunkID builds the id for chunk index i of a document. Re-ingesting the same
// document yields the same ids, so writes overwrite instead of duplicating.
func ChunkID(documentIdentifier string, i int) string {
	return fmt.Sprintf("%s_doc_%d", documentIdentifier, i)
}
