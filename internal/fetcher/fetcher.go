// Package fetcher retrieves web content, extracts clean text from HTML or
// PDF responses, and optionally follows one hop of in-domain links.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/time/rate"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/htmltext"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// FetchError reports a network or HTTP failure for one URL.
type FetchError struct {
	URL    string
	Status int // 0 when the request never completed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config holds fetcher configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	LinkDelay time.Duration // minimum spacing between linked-page fetches
}

// Result is the outcome of fetching one URL, including text gathered from
// followed links.
type Result struct {
	Text        string
	Metadata    map[string]string
	ContentType string // "html" or "pdf"
}

// Fetcher fetches URLs with browser-like headers and a fixed timeout.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	linkDelay  time.Duration
}

// New creates a new Fetcher.
func New(config Config) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if config.LinkDelay == 0 {
		config.LinkDelay = 1 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: config.Timeout},
		userAgent:  config.UserAgent,
		linkDelay:  config.LinkDelay,
	}
}

// Fetch retrieves pageURL and returns its clean text plus metadata. When
// followLinks is true and the page is HTML, up to maxLinks same-domain links
// are fetched and appended as labeled sections.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, followLinks bool, maxLinks int) (*Result, error) {
	body, contentType, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	domain := parsed.Host

	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return extractPDF(body, pageURL, domain)
	}

	return f.extractHTML(ctx, string(body), pageURL, parsed, followLinks, maxLinks)
}

// get issues a GET with browser-like headers. Non-2xx statuses and transport
// errors become FetchError.
func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &FetchError{URL: pageURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{URL: pageURL, Err: err}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// extractHTML parses the page, strips chrome elements, and optionally pulls
// in one hop of linked content.
func (f *Fetcher) extractHTML(ctx context.Context, htmlContent, pageURL string, base *url.URL, followLinks bool, maxLinks int) (*Result, error) {
	title := htmltext.Title(htmlContent)
	if title == "" {
		title = "Untitled"
	}

	// Links are collected before stripping so navigation anchors still carry
	// their text for filtering.
	var links []string
	if followLinks {
		anchors, err := htmltext.Links(htmlContent)
		if err == nil {
			links = filterLinks(anchors, base, maxLinks)
		}
	}

	text, err := htmltext.ExtractText(htmlContent)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	metadata := map[string]string{
		models.MetaSource:     pageURL,
		models.MetaDomain:     base.Host,
		models.MetaTitle:      title,
		"content_type":        "html",
		models.MetaSourceType: "web",
	}

	if len(links) > 0 {
		sections := f.fetchLinked(ctx, links)
		if len(sections) > 0 {
			text += "\n\nLINKED CONTENT:\n\n" + strings.Join(sections, "\n\n")
			metadata["includes_linked_content"] = "true"
			metadata["linked_pages_count"] = strconv.Itoa(len(sections))
		}
	}

	return &Result{Text: text, Metadata: metadata, ContentType: "html"}, nil
}

// fetchLinked fetches each kept link serially with a politeness delay,
// skipping failures and non-HTML resources. Returned sections are labeled
// with the linked page's title and URL.
func (f *Fetcher) fetchLinked(ctx context.Context, links []string) []string {
	// One token up front: the first linked fetch goes out immediately, every
	// later one waits out the spacing.
	limiter := rate.NewLimiter(rate.Every(f.linkDelay), 1)

	var sections []string
	for _, link := range links {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		body, contentType, err := f.get(ctx, link)
		if err != nil {
			slog.Debug("skipping failed link", "url", link, "error", err)
			continue
		}
		if !strings.Contains(strings.ToLower(contentType), "text/html") {
			slog.Debug("skipping non-HTML link", "url", link, "content_type", contentType)
			continue
		}

		content := string(body)
		text, err := htmltext.ExtractText(content)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		title := htmltext.Title(content)
		if title == "" {
			title = link
		}

		sections = append(sections, fmt.Sprintf("--- Content from %s (%s) ---\n%s", title, link, text))
	}
	return sections
}

// extractPDF extracts text page by page and takes the title from the PDF's
// Info dictionary when present, else from the URL's file name.
func extractPDF(data []byte, pageURL, domain string) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to read pdf: %w", err)}
	}

	title := path.Base(pageURL)
	if info := reader.Trailer().Key("Info"); !info.IsNull() {
		if t := info.Key("Title"); t.Kind() == pdf.String && t.Text() != "" {
			title = t.Text()
		}
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	return &Result{
		Text: b.String(),
		Metadata: map[string]string{
			models.MetaSource:     pageURL,
			models.MetaDomain:     domain,
			models.MetaTitle:      title,
			"content_type":        "pdf",
			models.MetaSourceType: "web",
		},
		ContentType: "pdf",
	}, nil
}
