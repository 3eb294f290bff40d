package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/lyricbird/lyricbird/internal/cache"
	"github.com/lyricbird/lyricbird/internal/config"
	"github.com/lyricbird/lyricbird/internal/engine"
	"github.com/lyricbird/lyricbird/internal/lyrics"
	"github.com/lyricbird/lyricbird/internal/playback"
	"github.com/lyricbird/lyricbird/internal/ui"
)

func runViewer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer bus.Close()

	source, err := playback.NewSource(bus, cfg.MprisService, cfg.PollInterval(), logger)
	if err != nil {
		return fmt.Errorf("failed to create playback source: %w", err)
	}

	client := lyrics.NewClient(cfg.LrclibURL, logger)
	pipeline := lyrics.NewPipeline(client, cache.NewStore(), cfg.Tolerance(), logger)
	settings := config.NewSettings(cfg)

	eng, err := engine.New(engine.Options{
		Snapshots: source.Snapshots(),
		Acquirer:  pipeline,
		Settings:  settings,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create sync engine: %w", err)
	}

	go func() { _ = source.Run(ctx) }()
	go func() { _ = eng.Run(ctx) }()

	model := ui.NewModel(ui.ModelConfig{
		Events:     eng.Events(),
		Settings:   settings,
		ArtworkURL: source.ArtworkURL,
		HideHeader: cfg.HideHeader,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
			program.Quit()
		case <-ctx.Done():
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("display error: %w", err)
	}
	return nil
}

// loadConfig layers file, environment, and command-line flags, the latter
// winning.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfigPath != "" {
		cfg, err = config.LoadFrom(flagConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("mpris-service") {
		cfg.MprisService = flagMprisService
	}
	if flags.Changed("lrclib-url") {
		cfg.LrclibURL = flagLrclibURL
	}
	if flags.Changed("sync-offset") {
		cfg.SyncOffset = flagSyncOffset
	}
	if flagContextBefore >= 0 {
		cfg.ContextBefore = flagContextBefore
	}
	if flagContextAfter >= 0 {
		cfg.ContextAfter = flagContextAfter
	}
	if flagHideHeader {
		cfg.HideHeader = true
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	return cfg, nil
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	return logger
}
