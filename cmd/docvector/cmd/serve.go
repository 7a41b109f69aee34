package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server for chat-assistant integration.

The server communicates via stdio and provides three tools:
  - query_documents: answer a question from the user's stored documents
  - ingest_url:      fetch a URL into the collection in the background
  - list_documents:  list the stored documents

Example:
  docvector serve --user alice`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	queue := ingest.NewQueue(16)
	defer queue.Close()

	server := mcp.NewServer(mcp.Config{
		Name:     a.config.MCP.Name,
		Version:  a.config.MCP.Version,
		Username: a.config.Username,
	}, a.responder, a.service, a.store, queue)

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
