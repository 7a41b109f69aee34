package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/crawler"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
)

var crawlDepth int

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a site and store every page",
	Long: `Crawl same-domain pages reachable from the start URL, convert each
page to markdown and store it in the user's collection.

Examples:
  docvector crawl https://docs.example.com --user alice
  docvector crawl https://docs.example.com --depth 2`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", 0, "maximum crawl depth (default from config)")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	depth := a.config.Crawler.MaxDepth
	if crawlDepth > 0 {
		depth = crawlDepth
	}

	c := crawler.New(crawler.Config{
		MaxDepth:  depth,
		Delay:     a.config.Crawler.Delay,
		UserAgent: a.config.Fetcher.UserAgent,
		Timeout:   a.config.Fetcher.Timeout,
	})

	fmt.Printf("Crawling %s (depth %d)\n", args[0], depth)
	statuses, err := c.CrawlInto(ctx, args[0], a.collection(), a.service)
	if err != nil {
		return err
	}

	succeeded := 0
	for _, status := range statuses {
		if status.Status == ingest.StatusSuccess {
			succeeded++
			fmt.Printf("  %s: %d chunks stored\n", status.Source, status.Chunks)
			continue
		}
		fmt.Printf("  %s: error: %s\n", status.Source, status.Error)
	}

	fmt.Printf("\n%d of %d pages stored in %s\n", succeeded, len(statuses), a.collection())
	return nil
}
