package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var ingestFolder string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Process local documents into the user's collection",
	Long: `Extract text from local documents, chunk it and store the embedded
chunks in the user's collection.

Supported formats: .txt, .pdf, .docx, .md, .json, .xml, .html, .htm

Examples:
  docvector ingest report.pdf --user alice
  docvector ingest notes.txt spec.md --user alice --folder work`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestFolder, "folder", "", "folder name stored with the documents")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// One failing file never aborts the rest of the batch.
	failures := 0
	for _, path := range args {
		n, err := a.service.IngestFile(ctx, path, a.collection(), ingestFolder)
		if err != nil {
			failures++
			fmt.Printf("  %s: error: %v\n", path, err)
			continue
		}
		fmt.Printf("  %s: %d chunks stored\n", path, n)
	}

	fmt.Printf("\n%d of %d documents ingested into %s\n", len(args)-failures, len(args), a.collection())
	if failures > 0 {
		return fmt.Errorf("%d document(s) failed", failures)
	}
	return nil
}
