package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/config"
	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/jobs"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
	"go.uber.org/zap"
)

// generate runs a single deck batch and writes it out.
func generate(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig, registry *backend.Registry, resolver *imagery.Resolver, logger *zap.Logger) error {
	if flags.Topic == "" {
		return fmt.Errorf("-topic is required")
	}

	names := registry.Names()
	if flags.Backends != "" {
		names = splitList(flags.Backends)
	}
	theme := flags.Theme
	if theme == "" {
		theme = cfg.Theme
	}
	window := flags.Window
	if window == 0 {
		window = cfg.Window
	}
	if window == 0 {
		window = orchestrator.DefaultWindow
	}
	timeout := flags.Timeout
	if cfg.TimeoutSeconds > 0 && timeout == jobs.DefaultTimeout {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	tasks, err := orchestrator.BuildTasks(flags.Topic, flags.Slides, names, theme)
	if err != nil {
		return err
	}

	reporter := orchestrator.NewReporter()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range reporter.Subscribe() {
			printEvent(ev)
		}
	}()

	sched := orchestrator.NewScheduler(registry, resolver, reporter, logger)
	result, err := sched.Run(ctx, flags.Topic, tasks, window, timeout)
	reporter.Close()
	<-drained
	if err != nil {
		return err
	}

	var out []byte
	if flags.JSON {
		out, err = deck.ExportJSON(flags.Topic, flags.Slides, result.Slides)
		if err != nil {
			return err
		}
	} else {
		out = []byte(deck.Markdown(result.Slides))
	}

	dest := flags.Out
	if dest == "" && cfg.OutputDir != "" {
		ext := ".md"
		if flags.JSON {
			ext = ".json"
		}
		dest = filepath.Join(cfg.OutputDir, slug(flags.Topic)+ext)
	}
	if dest != "" {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, out, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "deck written to %s (%d/%d slides)\n",
			dest, result.Totals.Succeeded, result.Totals.Total)
		return nil
	}

	fmt.Println(string(out))
	return nil
}

// printEvent renders one batch event as a progress line on stderr.
func printEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventBatchStart:
		fmt.Fprintf(os.Stderr, "generating %q\n", ev.Topic)
	case orchestrator.EventTaskAdmitted:
		fmt.Fprintf(os.Stderr, "  slide %d -> %s\n", ev.Index, ev.Backend)
	case orchestrator.EventUnitUpdated:
		if ev.Slide != nil {
			fmt.Fprintf(os.Stderr, "  slide %d: %s\n", ev.Index, ev.Slide.Title)
		}
	case orchestrator.EventTaskTimeout:
		fmt.Fprintf(os.Stderr, "  slide %d timed out\n", ev.Index)
	case orchestrator.EventTaskFailed:
		fmt.Fprintf(os.Stderr, "  slide %d failed: %s\n", ev.Index, ev.Message)
	case orchestrator.EventBatchComplete:
		if ev.Totals != nil {
			fmt.Fprintf(os.Stderr, "done: %d/%d slides\n", ev.Totals.Succeeded, ev.Totals.Total)
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// slug turns a topic into a filesystem-safe file stem.
func slug(topic string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(topic) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "deck"
	}
	return s
}
