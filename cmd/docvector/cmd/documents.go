package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var documentsFolder string

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List the documents stored in the user's collection",
	Long: `List the distinct documents stored in the user's collection, with
their folders.

Examples:
  docvector documents --user alice
  docvector documents --user alice --folder work`,
	RunE: runDocuments,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.Flags().StringVar(&documentsFolder, "folder", "", "restrict the listing to one folder")
}

func runDocuments(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.store.ListDocuments(ctx, a.collection(), documentsFolder)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Printf("No documents in %s\n", a.collection())
		return nil
	}

	for _, doc := range docs {
		if doc.FolderName != "" {
			fmt.Printf("  %s (folder: %s)\n", doc.DocumentName, doc.FolderName)
			continue
		}
		fmt.Printf("  %s\n", doc.DocumentName)
	}
	fmt.Printf("\n%d document(s) in %s\n", len(docs), a.collection())
	return nil
}
