// Package mcp exposes the document pipeline to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/retrieval"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/store"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	Username string // collection owner for all tool calls
}

// Server wraps the MCP server around the retrieval and ingestion services.
type Server struct {
	mcpServer *server.MCPServer
	responder *retrieval.Responder
	service   *ingest.Service
	store     *store.Store
	queue     *ingest.Queue
	username  string
}

// NewServer creates an MCP server exposing query, ingestion and listing
// tools over the given components.
func NewServer(config Config, responder *retrieval.Responder, service *ingest.Service, st *store.Store, queue *ingest.Queue) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		responder: responder,
		service:   service,
		store:     st,
		queue:     queue,
		username:  config.Username,
	}

	queryTool := mcp.NewTool("query_documents",
		mcp.WithDescription("Answer a question from the user's stored documents. Strict mode returns the retrieved context; comprehensive mode generates an answer from it."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
		mcp.WithString("collection",
			mcp.Description("Collection to search, or 'all' for every collection (default: the user's collection)"),
		),
		mcp.WithString("mode",
			mcp.Description("Answer mode: 'strict' (default) or 'comprehensive'"),
		),
	)
	mcpServer.AddTool(queryTool, s.queryHandler)

	ingestTool := mcp.NewTool("ingest_url",
		mcp.WithDescription("Fetch a web page or online PDF and store it in the user's collection. Processing runs in the background."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL to fetch and store"),
		),
	)
	mcpServer.AddTool(ingestTool, s.ingestURLHandler)

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents stored in the user's collection."),
		mcp.WithString("folder",
			mcp.Description("Restrict the listing to one folder"),
		),
	)
	mcpServer.AddTool(listTool, s.listDocumentsHandler)

	return s
}

func (s *Server) collection() string {
	return models.UserCollection(s.username)
}

// queryHandler handles the query_documents tool call.
func (s *Server) queryHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	collection := req.GetString("collection", s.collection())
	mode := req.GetString("mode", retrieval.ModeStrict)

	answer, err := s.responder.Answer(ctx, query, collection, mode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// ingestURLHandler handles the ingest_url tool call. The fetch runs on the
// background queue; completion is visible through list_documents.
func (s *Server) ingestURLHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	collection := s.collection()
	accepted := s.queue.Submit("ingest "+rawURL, func(taskCtx context.Context) error {
		_, err := s.service.IngestURL(taskCtx, rawURL, collection)
		return err
	})
	if !accepted {
		return mcp.NewToolResultError("ingestion queue is shut down"), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Processing %s in the background. Results will appear in list_documents when complete.", rawURL)), nil
}

// listDocumentsHandler handles the list_documents tool call.
func (s *Server) listDocumentsHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")

	docs, err := s.store.ListDocuments(ctx, s.collection(), folder)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}

	result, err := json.Marshal(docs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
