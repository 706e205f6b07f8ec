package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"redwatch/internal/api"
	"redwatch/internal/config"
	"redwatch/internal/engine"
	"redwatch/internal/feed"
	"redwatch/internal/notify"
	"redwatch/internal/scheduler"
	"redwatch/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var source feed.Source
	if cfg.FeedFormat == config.FeedFormatRSS {
		source = feed.NewRSSSource(http.DefaultClient, cfg.FeedUserAgent)
	} else {
		source = feed.NewRedditClient(http.DefaultClient, cfg.FeedLimit, cfg.FeedUserAgent)
	}

	var notifier notify.Sender
	if cfg.TelegramBotToken != "" {
		notifier, err = notify.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Error("create telegram sender", "error", err)
			os.Exit(1)
		}
	} else {
		notifier = notify.NewLogSender(log)
	}

	eng := engine.New(store, source, log,
		engine.WithFetchTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
		engine.WithFetchWorkers(cfg.FetchWorkers),
		engine.WithNotifier(notifier),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.ScanIntervalMinutes > 0 {
		sched := scheduler.New(eng, time.Duration(cfg.ScanIntervalMinutes)*time.Minute, log)
		go sched.Run(ctx)
		log.Info("scan scheduler enabled", "interval_minutes", cfg.ScanIntervalMinutes)
	}

	router := api.NewServer(api.NewHandler(store, eng, log))
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", "addr", cfg.ListenAddr, "feed_format", cfg.FeedFormat)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
