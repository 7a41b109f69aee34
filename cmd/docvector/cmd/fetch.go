package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
)

var (
	fetchFollowLinks bool
	fetchMaxLinks    int
	fetchAsync       bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Fetch web pages or online PDFs into the user's collection",
	Long: `Fetch one or more URLs, extract their content and store the embedded
chunks in the user's collection. HTML pages and online PDFs are supported.

With --follow-links, same-domain links on each page are fetched once and
appended to the page's content.

Examples:
  docvector fetch https://example.com/handbook --user alice
  docvector fetch https://example.com/a https://example.com/b --follow-links`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchFollowLinks, "follow-links", false, "also fetch same-domain links found on each page")
	fetchCmd.Flags().IntVar(&fetchMaxLinks, "max-links", 0, "maximum linked pages per URL (default from config)")
	fetchCmd.Flags().BoolVar(&fetchAsync, "async", false, "queue the URLs in the background instead of waiting")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if fetchFollowLinks {
		cfg.Fetcher.FollowLinks = true
	}
	if fetchMaxLinks > 0 {
		cfg.Fetcher.MaxLinks = fetchMaxLinks
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if fetchAsync {
		// Fire and forget: the queue drains before the process exits, and
		// results are observable through the documents command.
		queue := ingest.NewQueue(len(args))
		for _, rawURL := range args {
			queue.Submit("fetch "+rawURL, func(taskCtx context.Context) error {
				_, err := a.service.IngestURL(taskCtx, rawURL, a.collection())
				return err
			})
			fmt.Printf("  %s: queued\n", rawURL)
		}
		queue.Close()
		return nil
	}

	statuses := a.service.IngestURLs(ctx, args, a.collection())

	succeeded := 0
	for _, status := range statuses {
		if status.Status == ingest.StatusSuccess {
			succeeded++
			fmt.Printf("  %s: %d chunks stored\n", status.Source, status.Chunks)
			continue
		}
		fmt.Printf("  %s: error: %s\n", status.Source, status.Error)
	}

	fmt.Printf("\n%d of %d URLs ingested into %s\n", succeeded, len(statuses), a.collection())
	if succeeded < len(statuses) {
		return fmt.Errorf("%d URL(s) failed", len(statuses)-succeeded)
	}
	return nil
}
