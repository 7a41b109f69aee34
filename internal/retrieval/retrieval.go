// Package retrieval queries vector collections, ranks chunks by similarity
// and turns the ranked context into an answer.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// ScopeAll queries every collection in the database.
const ScopeAll = "all"

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Retriever ranks stored chunks against a query across one or all collections.
type Retriever struct {
	engine   vectorengine.Engine
	embedder Embedder
}

// New creates a Retriever over the given engine and embedder.
func New(engine vectorengine.Engine, embedder Embedder) *Retriever {
	return &Retriever{engine: engine, embedder: embedder}
}

// Retrieve returns chunks ranked descending by similarity. The scope is
// either one collection name or ScopeAll. Each collection is asked for its
// full chunk count so ranking sees everything, and collections are queried
// concurrently since reads are independent.
func (r *Retriever) Retrieve(ctx context.Context, query, scope string) ([]models.RetrievalResult, error) {
	names, err := r.scopeCollections(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	vector := r.embedder.Embed(ctx, query)

	perCollection := make([][]models.RetrievalResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			results, err := r.queryCollection(gctx, name, vector)
			if err != nil {
				return err
			}
			perCollection[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Flatten in collection order so the stable sort keeps ties predictable.
	var results []models.RetrievalResult
	for _, batch := range perCollection {
		results = append(results, batch...)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	slog.Debug("retrieval complete", "scope", scope, "collections", len(names), "results", len(results))
	return results, nil
}

// scopeCollections resolves the scope to concrete collection names. A named
// collection that does not exist yields an empty scope, not an error.
func (r *Retriever) scopeCollections(ctx context.Context, scope string) ([]string, error) {
	existing, err := r.engine.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	if scope == "" || strings.EqualFold(scope, ScopeAll) {
		sort.Strings(existing)
		return existing, nil
	}
	for _, name := range existing {
		if name == scope {
			return []string{scope}, nil
		}
	}
	return nil, nil
}

func (r *Retriever) queryCollection(ctx context.Context, name string, vector []float32) ([]models.RetrievalResult, error) {
	coll, err := r.engine.GetOrCreateCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %q: %w", name, err)
	}

	count, err := coll.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count %q: %w", name, err)
	}
	if count < 1 {
		count = 1
	}

	matches, err := coll.Query(ctx, vector, count)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", name, err)
	}

	results := make([]models.RetrievalResult, len(matches))
	for i, match := range matches {
		similarity := 1 - match.Distance
		if similarity < 0 {
			similarity = 0
		}
		results[i] = models.RetrievalResult{ChunkText: match.Text, Similarity: similarity}
	}
	return results, nil
}

// BuildContext joins ranked chunk texts with blank-line separators into the
// grounding context for generation.
func BuildContext(results []models.RetrievalResult) string {
	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.ChunkText
	}
	return strings.Join(texts, "\n\n")
}

// NoDocumentsMessage is returned when retrieval finds nothing; generation is
// skipped entirely in that case.
const NoDocumentsMessage = "No relevant documents found in the database."

// generationFailedMessage is the degraded-service answer after all retries.
const generationFailedMessage = "Unable to generate a response after multiple attempts."

// Generator produces an answer from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Responder answers questions from retrieved context in one of two modes:
// ModeStrict frames the raw context without a model call, ModeComprehensive
// asks the generation service.
type Responder struct {
	retriever *Retriever
	generator Generator
	retries   int
	backoff   time.Duration
}

const (
	ModeStrict        = "strict"
	ModeComprehensive = "comprehensive"
)

// NewResponder creates a Responder with three generation attempts and a one
// second base backoff.
func NewResponder(retriever *Retriever, generator Generator) *Responder {
	return &Responder{
		retriever: retriever,
		generator: generator,
		retries:   3,
		backoff:   time.Second,
	}
}

// Answer retrieves context for the query in the given scope and renders the
// response for the mode. Any mode other than ModeComprehensive is treated as
// strict.
func (r *Responder) Answer(ctx context.Context, query, scope, mode string) (string, error) {
	results, err := r.retriever.Retrieve(ctx, query, scope)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoDocumentsMessage, nil
	}

	documentContext := BuildContext(results)
	if mode != ModeComprehensive {
		return fmt.Sprintf("Based on the following documents, answer: '%s'\n\n%s", query, documentContext), nil
	}

	prompt := fmt.Sprintf("Here are relevant documents:\n\n%s\n\nNow answer: %s", documentContext, query)
	return r.generate(ctx, prompt), nil
}

// generate retries the generation service with a doubling backoff and falls
// back to a literal failure message rather than returning an error.
func (r *Responder) generate(ctx context.Context, prompt string) string {
	for attempt := 0; attempt < r.retries; attempt++ {
		answer, err := r.generator.Generate(ctx, prompt)
		if err == nil {
			return answer
		}
		slog.Warn("generation attempt failed", "attempt", attempt+1, "error", err)

		if attempt < r.retries-1 {
			select {
			case <-time.After(r.backoff << attempt):
			case <-ctx.Done():
				return generationFailedMessage
			}
		}
	}
	return generationFailedMessage
}
