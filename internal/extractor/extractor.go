// Package extractor converts uploaded documents into plain text by file type.
package extractor

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for file extensions outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError wraps a partitioning or parsing failure for a specific file.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error extracting text from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Partitioner segments a binary or rich document into ordered text elements.
type Partitioner interface {
	Partition(path string) ([]string, error)
}

// Extractor dispatches extraction on file extension, delegating rich formats
// to a Partitioner.
type Extractor struct {
	partitioner Partitioner
}

// New creates an Extractor backed by the default partitioner.
func New() *Extractor {
	return &Extractor{partitioner: NewPartitioner()}
}

// NewWithPartitioner creates an Extractor with a custom partitioner.
func NewWithPartitioner(p Partitioner) *Extractor {
	return &Extractor{partitioner: p}
}

var supportedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
	".md":   true,
	".json": true,
	".xml":  true,
	".html": true,
	".htm":  true,
}

// Extract returns the plain text of the document at path.
//
// An uploaded file must never yield an empty result: when extraction produces
// no text a descriptive placeholder referencing the file name is returned
// instead.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if !supportedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	var text string
	var err error

	switch ext {
	case ".json":
		text, err = extractJSON(path)
	case ".xml":
		text, err = extractXML(path)
	case ".md", ".txt":
		text, err = readTextFile(path)
		if err == nil && ext == ".txt" && strings.TrimSpace(text) == "" {
			slog.Debug("text file was empty, using placeholder", "path", path)
			text = "This is an empty text file."
		}
	default:
		text, err = e.partition(path)
	}

	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		slog.Warn("no text extracted, using placeholder", "path", path)
		text = fmt.Sprintf("This document (%s) appears to be empty or could not be processed.", filepath.Base(path))
	}

	return text, nil
}

// partition delegates to the partitioner and falls back to a raw text read
// when partitioning fails but the file is still readable as text.
func (e *Extractor) partition(path string) (string, error) {
	elements, err := e.partitioner.Partition(path)
	if err != nil {
		slog.Debug("partitioning failed, trying raw text fallback", "path", path, "error", err)
		text, readErr := readTextFile(path)
		if readErr != nil {
			return "", &ExtractionError{Path: path, Err: err}
		}
		return text, nil
	}
	return strings.Join(elements, "\n"), nil
}

// extractJSON re-serializes parsed JSON with indentation, preserving the
// document structure as readable text.
func extractJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	return buf.String(), nil
}

// extractXML concatenates all element text nodes depth-first, trimmed and
// space-joined.
func extractXML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	var parts []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ExtractionError{Path: path, Err: err}
		}
		if cd, ok := tok.(xml.CharData); ok {
			if s := strings.TrimSpace(string(cd)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

// readTextFile reads a file as UTF-8, falling back to a Latin-1 decode when
// the content is not valid UTF-8.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	// Latin-1: every byte maps directly to the code point of the same value.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
