package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	deleteDocument string
	deleteFolder   string
	deleteAll      bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove documents, folders or the whole collection",
	Long: `Remove stored chunks from the user's collection.

Exactly one of --document, --folder or --all must be given. Deleting a folder
with no documents succeeds with nothing to do; deleting a named document that
does not exist is an error.

Examples:
  docvector delete --user alice --document report.pdf
  docvector delete --user alice --folder work
  docvector delete --user alice --all`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteDocument, "document", "", "delete one document by name")
	deleteCmd.Flags().StringVar(&deleteFolder, "folder", "", "delete every document in a folder")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete the user's entire collection")
	deleteCmd.MarkFlagsOneRequired("document", "folder", "all")
	deleteCmd.MarkFlagsMutuallyExclusive("document", "folder", "all")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	collection := a.collection()
	switch {
	case deleteDocument != "":
		if err := a.store.DeleteByDocumentName(ctx, collection, deleteDocument); err != nil {
			return err
		}
		fmt.Printf("Deleted %s from %s\n", deleteDocument, collection)
	case deleteFolder != "":
		deleted, err := a.store.DeleteByFolder(ctx, collection, deleteFolder)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d chunk(s) from folder %s\n", deleted, deleteFolder)
	case deleteAll:
		if err := a.store.Clear(ctx, collection); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", collection)
	}
	return nil
}
