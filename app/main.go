package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/ratioking/app/api"
	"github.com/lysyi3m/ratioking/app/cfg"
	"github.com/lysyi3m/ratioking/app/engine"
	"github.com/lysyi3m/ratioking/app/feed"
	"github.com/lysyi3m/ratioking/app/qbittorrent"
	"github.com/lysyi3m/ratioking/app/state"
	"github.com/lysyi3m/ratioking/app/tasks"
	"github.com/lysyi3m/ratioking/app/telegram"
	"github.com/lysyi3m/ratioking/app/torrent"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting RatioKing", "version", appCfg.Version)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	store := state.NewFileStore(appCfg.StateFile, int64(appCfg.CooldownFallback))
	ruleEngine := engine.New()
	feedClient := feed.NewClient(httpClient, appCfg.RSSUrl, appCfg.UserAgent)
	fetcher := torrent.NewFetcher(httpClient, appCfg.UserAgent, appCfg.MaxTorrentBytes)
	qbClient := qbittorrent.NewClient(httpClient, appCfg.QBUrl, appCfg.QBUser, appCfg.QBPass)
	notifier := telegram.NewNotifier(httpClient, appCfg.TelegramBotToken, appCfg.TelegramChatID)

	if notifier.Enabled() {
		slog.Info("Telegram notifications enabled", "chat_id", appCfg.TelegramChatID)
	} else {
		slog.Info("Telegram notifications disabled (TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID not set)")
	}

	params := tasks.PollParams{
		RateBytesPerSec:  appCfg.RateBytesPerSec(),
		FallbackCooldown: int64(appCfg.CooldownFallback),
		SavePath:         appCfg.SavePath,
		Category:         appCfg.Category,
		Tags:             appCfg.Tags,
		RatioLimit:       appCfg.RatioLimit,
		SeedingTimeLimit: appCfg.SeedingTimeLimit,
	}

	newPollTask := func() tasks.TaskInterface {
		return tasks.NewPollTask(store, ruleEngine, feedClient, fetcher, qbClient, notifier, params)
	}

	interval := time.Duration(appCfg.IntervalMinutes) * time.Minute
	slog.Info("Starting scheduler", "interval", interval.String(), "feed", appCfg.RSSUrl)
	scheduler := tasks.NewScheduler(newPollTask, interval)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(store, scheduler, newPollTask)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("RatioKing started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
