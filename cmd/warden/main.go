package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soulified/warden/internal/config"
	"github.com/soulified/warden/internal/core"
	"github.com/soulified/warden/internal/mc"
	"github.com/soulified/warden/internal/provider"
	"github.com/soulified/warden/internal/status"
	"github.com/soulified/warden/internal/store"
	"github.com/soulified/warden/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		headless    = flag.Bool("headless", false, "Run without the terminal dashboard")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Warden %s\n", Version)
		os.Exit(0)
	}

	if err := initLogging(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", Version).Msg("Starting Warden")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	s, err := store.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer s.Close()

	bus := core.NewEventBus(1000)
	defer bus.Close()

	ai := initAI(cfg)

	dialer := func(ctx context.Context) (mc.Client, error) {
		return mc.Dial(ctx, cfg.Server.Driver, mc.Options{
			Host:     cfg.Server.Host,
			Port:     cfg.Server.Port,
			Version:  cfg.Server.Version,
			Username: cfg.Account.Username,
			Password: cfg.Account.Password,
			AuthMode: cfg.Account.AuthMode,
		})
	}

	supervisor := core.NewSupervisor(dialer, cfg, bus, s, ai, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	var statusSrv *status.Server
	if cfg.Status.Enabled {
		statusSrv = status.NewServer(cfg.Status.Addr, supervisor.Snapshot, bus)
		statusSrv.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if *headless {
		<-sigCh
		log.Info().Msg("Received shutdown signal")
	} else {
		eventCh := bus.Subscribe()
		model := tui.New(supervisor.Snapshot, eventCh)
		program := tea.NewProgram(model, tea.WithAltScreen())

		go func() {
			<-sigCh
			log.Info().Msg("Received shutdown signal")
			program.Quit()
		}()

		if _, err := program.Run(); err != nil {
			log.Fatal().Err(err).Msg("Dashboard error")
		}
	}

	cancel()

	if statusSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := statusSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Status server shutdown failed")
		}
		shutdownCancel()
	}

	select {
	case <-supervisorDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Supervisor did not stop in time")
	}

	log.Info().Msg("Warden shutdown complete")
}

func initLogging(debug bool) error {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	// Truncate on startup; the dashboard owns stdout/stderr.
	logPath := filepath.Join(dataDir, "warden.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	return nil
}

// initAI builds the configured completion provider, nil when disabled.
func initAI(cfg *config.Config) provider.Provider {
	if !cfg.AI.Enabled {
		return nil
	}
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("AI enabled but no API key configured; AI replies disabled")
		return nil
	}

	registry := provider.NewRegistry()
	registry.RegisterFactory(provider.NewOpenAIFactory(
		cfg.AI.Provider,
		cfg.AI.Endpoint,
		cfg.AI.APIKey,
		cfg.AI.Model,
		cfg.AI.Temperature,
		cfg.AI.RateLimit,
		cfg.AI.RateBurst,
	))

	p, err := registry.Create(cfg.AI.Provider)
	if err != nil {
		log.Warn().Err(err).Msg("AI provider unavailable")
		return nil
	}
	return p
}
