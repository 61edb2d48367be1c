package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewDeckMCPServer creates an MCP server with the 3 deck tools
// registered: generate_deck, get_deck_job, and list_deck_jobs.
func NewDeckMCPServer(svc *DeckService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "deckgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_deck",
		Description: "Submit a deck generation job: a topic is expanded into N slides, each generated by a backend with a bounded concurrency window. Returns the job ID.",
	}, svc.GenerateDeck)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_deck_job",
		Description: "Get the state of a deck job. Completed jobs include the ordered slides and a Markdown rendering of the deck.",
	}, svc.GetDeckJob)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deck_jobs",
		Description: "List deck jobs in submission order, optionally filtered by state, with pagination.",
	}, svc.ListDeckJobs)

	return server
}

// RunMCPServer starts an HTTP server exposing the deck MCP tools.
func RunMCPServer(ctx context.Context, svc *DeckService, addr string) error {
	server := NewDeckMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking
// until stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
