// Package chunker splits extracted text into bounded chunks while preserving
// paragraph structure.
package chunker

import "strings"

// DefaultMaxChunkSize is the default character budget per chunk.
const DefaultMaxChunkSize = 1000

// Chunk splits text into chunks of roughly maxChunkSize characters.
//
// Paragraphs (blank-line separated) are accumulated into a running chunk; when
// the next paragraph would push the running size over the budget the chunk is
// closed and a new one started. A single paragraph longer than the budget is
// kept whole as an oversized chunk rather than split mid-paragraph.
//
// The result is never empty: if no chunks were produced the original text is
// returned as a single chunk.
func Chunk(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current []string
	currentSize := 0

	for _, paragraph := range paragraphs {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		if currentSize+len(paragraph) > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
			currentSize = 0
		}

		current = append(current, paragraph)
		currentSize += len(paragraph)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
