package mcp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/embeddings"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/extractor"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/fetcher"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/retrieval"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/store"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine/memory"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "generated", nil
}

func newTestServer(t *testing.T) (*Server, *store.Store, *ingest.Queue) {
	t.Helper()

	st := store.New(memory.New(), embeddings.NewProvider(nil, 16))
	service := ingest.New(
		extractor.New(),
		fetcher.New(fetcher.Config{Timeout: 5 * time.Second, LinkDelay: time.Millisecond}),
		st,
		nil,
		ingest.Config{MaxChunkSize: 1000},
	)
	responder := retrieval.NewResponder(retrieval.New(st.Engine(), st.Embedder()), staticGenerator{})
	queue := ingest.NewQueue(4)
	t.Cleanup(queue.Close)

	s := NewServer(Config{Name: "docvector", Version: "1.0.0", Username: "alice"}, responder, service, st, queue)
	return s, st, queue
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestServer_Creation(t *testing.T) {
	s, _, _ := newTestServer(t)
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
}

func TestQueryTool_StrictMode(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newTestServer(t)

	st.Upsert(ctx, models.UserCollection("alice"), "notes_txt",
		[]string{"the deadline is friday"},
		map[string]string{models.MetaDocumentName: "notes.txt"})

	result, err := s.queryHandler(ctx, callToolRequest(map[string]any{"query": "when is the deadline?"}))
	if err != nil {
		t.Fatal(err)
	}
	answer := resultText(t, result)
	if !strings.Contains(answer, "the deadline is friday") {
		t.Errorf("strict answer should contain retrieved context, got %q", answer)
	}
}

func TestQueryTool_CollectionScope(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newTestServer(t)

	st.Upsert(ctx, models.UserCollection("alice"), "mine_txt",
		[]string{"alice keeps the runbook"},
		map[string]string{models.MetaDocumentName: "mine.txt"})
	st.Upsert(ctx, models.UserCollection("bob"), "theirs_txt",
		[]string{"bob keeps the oncall schedule"},
		map[string]string{models.MetaDocumentName: "theirs.txt"})

	// Default scope is the configured user's collection.
	result, err := s.queryHandler(ctx, callToolRequest(map[string]any{"query": "who keeps what?"}))
	if err != nil {
		t.Fatal(err)
	}
	answer := resultText(t, result)
	if strings.Contains(answer, "oncall schedule") {
		t.Errorf("default scope leaked another collection, got %q", answer)
	}

	// The "all" scope aggregates every collection.
	result, err = s.queryHandler(ctx, callToolRequest(map[string]any{
		"query":      "who keeps what?",
		"collection": retrieval.ScopeAll,
	}))
	if err != nil {
		t.Fatal(err)
	}
	answer = resultText(t, result)
	if !strings.Contains(answer, "runbook") || !strings.Contains(answer, "oncall schedule") {
		t.Errorf("all scope should cover both collections, got %q", answer)
	}
}

func TestQueryTool_MissingQuery(t *testing.T) {
	s, _, _ := newTestServer(t)

	result, err := s.queryHandler(context.Background(), callToolRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected an error result without a query parameter")
	}
}

func TestListDocumentsTool(t *testing.T) {
	ctx := context.Background()
	s, st, _ := newTestServer(t)

	st.Upsert(ctx, models.UserCollection("alice"), "a_txt",
		[]string{"x"}, map[string]string{models.MetaDocumentName: "a.txt"})

	result, err := s.listDocumentsHandler(ctx, callToolRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, result), "a.txt") {
		t.Errorf("listing should contain a.txt, got %q", resultText(t, result))
	}
}

func TestIngestURLTool_ProcessesInBackground(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Status Page</title></head><body><p>All systems go.</p></body></html>`)
	}))
	defer server.Close()

	ctx := context.Background()
	s, st, _ := newTestServer(t)

	result, err := s.ingestURLHandler(ctx, callToolRequest(map[string]any{"url": server.URL}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, result), "background") {
		t.Errorf("expected a processing acknowledgment, got %q", resultText(t, result))
	}

	// Completion is observable only through the collection's content.
	deadline := time.After(5 * time.Second)
	for {
		docs, err := st.ListDocuments(ctx, models.UserCollection("alice"), "")
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) == 1 && docs[0].DocumentName == "Status Page" {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("ingested document never appeared, have %v", docs)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
