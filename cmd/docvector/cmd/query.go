package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/retrieval"
)

var (
	queryCollection string
	queryMode       string
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question against stored documents",
	Long: `Retrieve the chunks most similar to the question and answer from them.

Modes:
  strict         return the retrieved context with instructive framing (no model call)
  comprehensive  ask the generation service to answer from the context

The scope defaults to the user's collection; pass --collection all to search
every collection.

Examples:
  docvector query "what is the refund policy?" --user alice
  docvector query "summarize the Q3 report" --user alice --mode comprehensive
  docvector query "who mentions kubernetes?" --collection all`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryCollection, "collection", "", "collection to search, or 'all' (default: the user's collection)")
	queryCmd.Flags().StringVar(&queryMode, "mode", retrieval.ModeStrict, "answer mode: strict or comprehensive")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	scope := queryCollection
	if scope == "" {
		scope = a.collection()
	}

	answer, err := a.responder.Answer(ctx, args[0], scope, queryMode)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
