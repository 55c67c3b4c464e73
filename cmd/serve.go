package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/okian/fairway/internal/adapters/chat/discord"
	"github.com/okian/fairway/internal/adapters/http/api"
	"github.com/okian/fairway/internal/adapters/ledger/sheets"
	"github.com/okian/fairway/internal/adapters/repository"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/config"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const (
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and run the weekly schedule",
	}
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	}
	return cmd
}

func serve(ctx context.Context) error {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWith(os.Stdout, logger.Format(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	dc, err := discord.New(cfg.DiscordToken, cfg.GuildID, nil)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithLocation(loc),
		service.WithQueueSize(cfg.QueueSize),
		service.WithCommandPrefix(cfg.CommandPrefix),
		service.WithOwner(cfg.OwnerID),
		service.WithRevealChannel(cfg.RevealChannelID),
		service.WithSchedules(cfg.RevealSchedule, cfg.RotateSchedule, cfg.ReminderSchedule),
		service.WithTimeouts(cfg.SendTimeout, cfg.LedgerTimeout),
	}
	if cfg.LedgerEnabled() {
		creds, err := readCredentials(cfg.LedgerCredentials)
		if err != nil {
			return err
		}
		ledger, err := sheets.New(ctx, creds, cfg.LedgerID, sheets.WithTimeout(cfg.LedgerTimeout))
		if err != nil {
			return err
		}
		opts = append(opts, service.WithLedger(ledger, cfg.LedgerParticipants))
	} else {
		log.Warn(ctx, "ledger not configured; statistics commands are disabled")
	}

	svc, err := service.New(ctx, store, dc, opts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	dc.OnMessage(ctx, svc.HandleMessage)
	if err := dc.Open(); err != nil {
		_ = svc.Stop(context.Background())
		return err
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := api.NewServer(svc)
	go func() {
		if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	if err := dc.Close(); err != nil {
		log.Error(shutdownCtx, "discord close failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service stop failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "stopped")
	return nil
}

// openStore picks the document backend.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return repository.NewRedisStore(client, cfg.RedisPrefix), nil
	default:
		return repository.NewFileStore(cfg.DataDir,
			repository.WithFileName(repository.CollectionPicks, cfg.PicksFile),
			repository.WithFileName(repository.CollectionEvents, cfg.EventsFile),
		), nil
	}
}

// readCredentials accepts either the service account JSON itself or a path to it.
func readCredentials(v string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(v), "{") {
		return []byte(v), nil
	}
	data, err := os.ReadFile(v)
	if err != nil {
		return nil, fmt.Errorf("ledger credentials: %w", err)
	}
	return data, nil
}

// startServiceMetricsUpdater keeps the gauges fresh between tasks.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if n, ok := stats["queue_length"].(int); ok {
		metrics.UpdateLoopQueueDepth(n)
	}
	if n, ok := stats["picks"].(int); ok {
		metrics.UpdatePicksCurrent(n)
	}
	if n, ok := stats["events_remaining"].(int); ok {
		metrics.UpdateEventsRemaining(n)
	}
}
