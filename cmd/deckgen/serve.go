package main

import (
	"context"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/httpapi"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/jobs"
	"github.com/dusk-indust/deckgen/internal/mcptools"
	"go.uber.org/zap"
)

// serve runs the HTTP API, the MCP server, or both, until interrupted.
func serve(ctx context.Context, flags cliFlags, registry *backend.Registry, resolver *imagery.Resolver, logger *zap.Logger) error {
	store := jobs.NewStore()
	hub := httpapi.NewHub()
	worker := jobs.NewWorker(store, registry, resolver, hub, logger)

	go worker.Start(ctx, flags.Workers)

	if flags.Serve != "" {
		server := httpapi.NewServer(store, worker, hub, logger)
		if err := server.Start(ctx, flags.Serve); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Stop(shutdownCtx)
		}()
		logger.Info("http api listening", zap.String("addr", flags.Serve))
	}

	svc := mcptools.NewDeckService(store, worker, registry)

	if flags.MCPAddr != "" {
		return mcptools.RunMCPServer(ctx, svc, flags.MCPAddr)
	}
	if flags.ServeMCP {
		return mcptools.RunMCPServerStdio(ctx, mcptools.NewDeckMCPServer(svc))
	}

	<-ctx.Done()
	return nil
}
