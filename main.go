package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fragmede/hnpeek/internal/api"
	"github.com/fragmede/hnpeek/internal/config"
	"github.com/fragmede/hnpeek/internal/preview"
	"github.com/fragmede/hnpeek/internal/resolve"
	"github.com/fragmede/hnpeek/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load("hnpeek", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hnpeek: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	// The terminal belongs to bubbletea, so logs go to a file.
	logFile, err := tea.LogToFile(cfg.LogPath, "hnpeek")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	client := api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithMaxInFlight(cfg.MaxInFlight),
	)
	resolver := resolve.New(client, logger)
	session := preview.NewSession(resolver, logger)

	// Cancelled on quit so in-flight loads stop with the program.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("hnpeek: starting",
		"base_url", client.BaseURL(), "count", cfg.StoryCount, "max_inflight", cfg.MaxInFlight)

	app := ui.NewApp(ctx, resolver, session, cfg.StoryCount, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	logger.Info("hnpeek: exiting", "cached_stories", session.CacheLen())
	return nil
}
