// Package crawler walks a site within one domain and converts each page to
// markdown for ingestion.
package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gocolly/colly/v2"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/htmltext"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// Config holds crawler configuration.
type Config struct {
	MaxDepth  int
	Delay     time.Duration
	UserAgent string
	Timeout   time.Duration
}

// Page is one crawled page converted to markdown.
type Page struct {
	URL       string
	Title     string
	Markdown  string
	CrawledAt time.Time
}

// Crawler fetches every same-domain page reachable from a start URL.
type Crawler struct {
	config Config
}

// New creates a new Crawler.
func New(config Config) *Crawler {
	if config.MaxDepth == 0 {
		config.MaxDepth = 2
	}
	if config.Delay == 0 {
		config.Delay = 500 * time.Millisecond
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "docvector/1.0"
	}
	return &Crawler{config: config}
}

// Crawl visits startURL and same-domain links up to the configured depth,
// returning each page as markdown. Pages that fail to convert are skipped.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]Page, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}

	var pages []Page
	var mu sync.Mutex
	var cancelled bool

	collector := colly.NewCollector(
		colly.MaxDepth(c.config.MaxDepth),
		colly.UserAgent(c.config.UserAgent),
	)
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       c.config.Delay,
		Parallelism: 2,
	})
	collector.SetRequestTimeout(c.config.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			cancelled = true
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 400 {
			return
		}

		pageURL := r.Request.URL.String()
		htmlContent := string(r.Body)

		markdown, err := htmltomarkdown.ConvertString(htmlContent)
		if err != nil {
			slog.Debug("skipping page, markdown conversion failed", "url", pageURL, "error", err)
			return
		}

		title := htmltext.Title(htmlContent)
		if title == "" {
			title = pageURL
		}

		mu.Lock()
		pages = append(pages, Page{
			URL:       pageURL,
			Title:     title,
			Markdown:  markdown,
			CrawledAt: time.Now(),
		})
		mu.Unlock()
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		absoluteURL := e.Request.AbsoluteURL(e.Attr("href"))
		linkURL, err := url.Parse(absoluteURL)
		if err != nil {
			return
		}
		if linkURL.Host == parsed.Host {
			e.Request.Visit(absoluteURL)
		}
	})

	if err := collector.Visit(startURL); err != nil {
		slog.Debug("visit error", "url", startURL, "error", err)
		return pages, nil
	}
	collector.Wait()

	if cancelled {
		return pages, ctx.Err()
	}

	slog.Debug("crawl complete", "url", startURL, "pages", len(pages))
	return pages, nil
}

// CrawlInto crawls a site and stores each page in the collection through the
// ingestion service. One failing page never aborts the crawl; the returned
// statuses have one entry per crawled page.
func (c *Crawler) CrawlInto(ctx context.Context, startURL, collection string, service *ingest.Service) ([]models.DocumentStatus, error) {
	pages, err := c.Crawl(ctx, startURL)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.DocumentStatus, 0, len(pages))
	for _, page := range pages {
		pageURL, parseErr := url.Parse(page.URL)
		domain := ""
		if parseErr == nil {
			domain = pageURL.Host
		}

		n, err := service.IngestText(ctx, page.Markdown, page.Title, collection, map[string]string{
			models.MetaSource:     page.URL,
			models.MetaTitle:      page.Title,
			models.MetaDomain:     domain,
			models.MetaSourceType: "web_crawl",
		})
		if err != nil {
			slog.Warn("failed to store crawled page", "url", page.URL, "error", err)
			statuses = append(statuses, models.DocumentStatus{
				Source: page.URL,
				Status: ingest.StatusError,
				Error:  err.Error(),
			})
			continue
		}
		statuses = append(statuses, models.DocumentStatus{
			Source: page.URL,
			Status: ingest.StatusSuccess,
			Chunks: n,
		})
	}
	return statuses, nil
}
