package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/embeddings"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/store"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine/memory"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

func newTestCrawler() *Crawler {
	return New(Config{
		MaxDepth:  2,
		Delay:     10 * time.Millisecond,
		UserAgent: "test-agent",
	})
}

func TestCrawl_SinglePageToMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Docs Home</title></head><body>
			<h1>Getting Started</h1>
			<p>Install the binary first.</p>
		</body></html>`))
	}))
	defer server.Close()

	pages, err := newTestCrawler().Crawl(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	page := pages[0]
	if page.Title != "Docs Home" {
		t.Errorf("title = %q", page.Title)
	}
	if !strings.Contains(page.Markdown, "# Getting Started") {
		t.Errorf("markdown should contain a heading, got %q", page.Markdown)
	}
	if page.CrawledAt.IsZero() {
		t.Error("CrawledAt should be set")
	}
}

func TestCrawl_FollowsSameDomainLinks(t *testing.T) {
	pages := map[string]string{
		"/":      `<html><head><title>Home</title></head><body><a href="/guide">Guide</a></body></html>`,
		"/guide": `<html><head><title>Guide</title></head><body><h1>Guide Content</h1></body></html>`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if content, ok := pages[r.URL.Path]; ok {
			w.Write([]byte(content))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	crawled, err := newTestCrawler().Crawl(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(crawled) < 2 {
		t.Fatalf("expected at least 2 pages, got %d", len(crawled))
	}

	titles := make(map[string]bool)
	for _, page := range crawled {
		titles[page.Title] = true
	}
	if !titles["Home"] || !titles["Guide"] {
		t.Errorf("crawled titles = %v", titles)
	}
}

func TestCrawlInto_StoresPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Changelog</title></head><body><p>Version history.</p></body></html>`))
	}))
	defer server.Close()

	st := store.New(memory.New(), embeddings.NewProvider(nil, 16))
	service := ingest.New(nil, nil, st, nil, ingest.Config{MaxChunkSize: 1000})

	statuses, err := newTestCrawler().CrawlInto(context.Background(), server.URL, "user_alice_docs", service)
	if err != nil {
		t.Fatalf("CrawlInto() error = %v", err)
	}
	if len(statuses) != 1 || statuses[0].Status != ingest.StatusSuccess {
		t.Fatalf("statuses = %+v", statuses)
	}

	entries, err := st.Get(context.Background(), "user_alice_docs", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected stored entries")
	}
	meta := entries[0].Metadata
	if meta[models.MetaDocumentName] != "Changelog" {
		t.Errorf("document_name = %q", meta[models.MetaDocumentName])
	}
	if meta[models.MetaSourceType] != "web_crawl" {
		t.Errorf("source_type = %q", meta[models.MetaSourceType])
	}
}
