package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/htmltext"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

func newTestFetcher() *Fetcher {
	return New(Config{Timeout: 5 * time.Second, LinkDelay: time.Millisecond})
}

func TestFetch_HTTPErrorIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, false, 0)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fetchErr.Status)
	}
	if fetchErr.URL != server.URL {
		t.Errorf("error URL = %q, want %q", fetchErr.URL, server.URL)
	}
}

func TestFetch_HTMLTextAndMetadata(t *testing.T) {
	page := `<html><head><title>Release Notes</title></head><body>
		<nav>Home | Docs</nav>
		<p>Version 2.0 ships today.</p>
		<script>track()</script>
		<footer>All rights reserved</footer>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	result, err := newTestFetcher().Fetch(context.Background(), server.URL, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(result.Text, "Version 2.0 ships today.") {
		t.Errorf("text missing body content: %q", result.Text)
	}
	for _, chrome := range []string{"Home | Docs", "track()", "All rights reserved"} {
		if strings.Contains(result.Text, chrome) {
			t.Errorf("text should not contain %q", chrome)
		}
	}

	if result.Metadata[models.MetaTitle] != "Release Notes" {
		t.Errorf("title = %q", result.Metadata[models.MetaTitle])
	}
	if result.Metadata[models.MetaSource] != server.URL {
		t.Errorf("source = %q", result.Metadata[models.MetaSource])
	}
	if result.ContentType != "html" {
		t.Errorf("content type = %q, want html", result.ContentType)
	}
	if result.Metadata["includes_linked_content"] != "" {
		t.Error("linked content flag should be absent when links are not followed")
	}
}

func TestFetch_FollowsFilteredLinksOnly(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>Start</title></head><body>
			<p>Main article text.</p>
			<a href="/guide">Complete installation guide</a>
			<a href="/guide">Complete installation guide</a>
			<a href="/login">Member login portal here</a>
			<a href="/pricing">Full pricing breakdown</a>
			<a href="https://elsewhere.example.com/page">External detailed article</a>
			<a href="#section">Jump to the section below</a>
			<a href="/deep">More</a>
			<a href="/broken">Broken but descriptive link</a>
		</body></html>`)
	})
	mux.HandleFunc("/guide", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Guide</title></head><body><p>Guide body text.</p></body></html>`)
	})
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Pricing</title></head><body><p>Pricing body text.</p></body></html>`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	result, err := newTestFetcher().Fetch(context.Background(), server.URL+"/", true, 5)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(result.Text, "LINKED CONTENT:") {
		t.Fatalf("expected linked content marker in %q", result.Text)
	}
	if !strings.Contains(result.Text, "Guide body text.") {
		t.Error("guide page should have been followed")
	}
	if !strings.Contains(result.Text, "Pricing body text.") {
		t.Error("pricing page should have been followed")
	}
	if strings.Count(result.Text, "Guide body text.") != 1 {
		t.Error("duplicate link should be fetched once")
	}
	if strings.Contains(result.Text, "--- Content from") && strings.Contains(result.Text, "login") {
		t.Error("login page should have been filtered out")
	}

	// One broken link fails quietly; the two good pages still count.
	if result.Metadata["linked_pages_count"] != "2" {
		t.Errorf("linked_pages_count = %q, want 2", result.Metadata["linked_pages_count"])
	}
	if result.Metadata["includes_linked_content"] != "true" {
		t.Error("includes_linked_content should be true")
	}
}

func TestFilterLinks_CapsAndOrders(t *testing.T) {
	base, _ := url.Parse("https://docs.example.com/start")
	anchors := []htmltext.Link{
		{Href: "/first-article", Text: "First article on the topic"},
		{Href: "/second-article", Text: "Second article on the topic"},
		{Href: "/third-article", Text: "Third article on the topic"},
	}

	links := filterLinks(anchors, base, 2)
	want := []string{
		"https://docs.example.com/first-article",
		"https://docs.example.com/second-article",
	}
	if len(links) != len(want) {
		t.Fatalf("filterLinks() = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestFilterLinks_RejectsNavAndUtility(t *testing.T) {
	base, _ := url.Parse("https://example.com/")
	tests := []struct {
		name   string
		anchor htmltext.Link
	}{
		{"short text", htmltext.Link{Href: "/page", Text: "More"}},
		{"sign in phrase", htmltext.Link{Href: "/auth", Text: "Sign in to your account"}},
		{"login path", htmltext.Link{Href: "/login/reset", Text: "Reset your password today"}},
		{"privacy path", htmltext.Link{Href: "/privacy-policy", Text: "Our detailed privacy policy"}},
		{"mailto", htmltext.Link{Href: "mailto:team@example.com", Text: "Email the whole team"}},
		{"javascript", htmltext.Link{Href: "javascript:void(0)", Text: "Open interactive widget now"}},
		{"other domain", htmltext.Link{Href: "https://other.example.org/a", Text: "A long external reference"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if links := filterLinks([]htmltext.Link{tt.anchor}, base, 5); len(links) != 0 {
				t.Errorf("filterLinks() kept %v", links)
			}
		})
	}
}
