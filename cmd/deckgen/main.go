package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/config"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/jobs"
	"go.uber.org/zap"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Topic       string
	Slides      int
	Backends    string
	Theme       string
	Window      int
	Timeout     time.Duration
	Out         string
	JSON        bool
	ProjectRoot string
	Serve       string
	ServeMCP    bool
	MCPAddr     string
	Workers     int
	Verbose     bool
	Version     bool
}

// defaultAPIKeyEnv is consulted when a backend config does not name its
// own key variable.
const defaultAPIKeyEnv = "GEMINI_API_KEY"

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("deckgen", flag.ContinueOnError)
	fs.StringVar(&flags.Topic, "topic", "", "deck topic to generate")
	fs.IntVar(&flags.Slides, "slides", 5, "number of slides")
	fs.StringVar(&flags.Backends, "backends", "", "comma-separated backend names (default: all configured)")
	fs.StringVar(&flags.Theme, "theme", "", "visual theme hint for imagery")
	fs.IntVar(&flags.Window, "window", 0, "max slides generated concurrently")
	fs.DurationVar(&flags.Timeout, "timeout", jobs.DefaultTimeout, "per-slide generation deadline")
	fs.StringVar(&flags.Out, "out", "", "write the deck to this file instead of stdout")
	fs.BoolVar(&flags.JSON, "json", false, "export the deck as JSON instead of markdown")
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "directory to load deckgen.yml from")
	fs.StringVar(&flags.Serve, "serve", "", "serve the HTTP API on this address instead of generating")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server on stdio")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "", "serve MCP over HTTP on this address")
	fs.IntVar(&flags.Workers, "workers", 2, "concurrent jobs in serve mode")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(flags.Verbose || cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	resolver := buildResolver(cfg, logger)

	if flags.Serve != "" || flags.ServeMCP || flags.MCPAddr != "" {
		return serve(ctx, flags, registry, resolver, logger)
	}
	return generate(ctx, flags, cfg, registry, resolver, logger)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// buildRegistry registers one Gemini backend per config entry. Entries
// whose key variable is unset are skipped with a note rather than
// failing, so a partially configured machine can still use the rest.
func buildRegistry(ctx context.Context, cfg *config.ProjectConfig) (*backend.Registry, error) {
	registry := backend.NewRegistry()

	entries := cfg.Backends
	if len(entries) == 0 {
		entries = []config.BackendConfig{{Model: backend.DefaultGeminiModel}}
	}

	for _, entry := range entries {
		keyEnv := entry.APIKeyEnv
		if keyEnv == "" {
			keyEnv = defaultAPIKeyEnv
		}
		apiKey := os.Getenv(keyEnv)
		if apiKey == "" {
			fmt.Fprintf(os.Stderr, "skipping backend %q: %s not set\n", entry.Model, keyEnv)
			continue
		}

		name := entry.Name
		if name == "" {
			name = entry.Model
		}
		b, err := backend.NewGemini(ctx, name, apiKey, entry.Model)
		if err != nil {
			return nil, fmt.Errorf("backend %q: %w", name, err)
		}
		if err := registry.Register(b); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func buildResolver(cfg *config.ProjectConfig, logger *zap.Logger) *imagery.Resolver {
	var sources []imagery.Source
	if cfg.ImageEndpoint != "" {
		sources = append(sources, imagery.NewHTTPSource(cfg.ImageEndpoint))
	}
	return imagery.NewResolver(logger, sources...)
}
