// Package main is the entry point for the elnet power usage dashboard.
// It wires configuration, storage, the polling tracker and the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/config"
	"github.com/vikrant82/elnet-dashboard/internal/db"
	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/meterapi"
	"github.com/vikrant82/elnet-dashboard/internal/metrics"
	"github.com/vikrant82/elnet-dashboard/internal/notify"
	"github.com/vikrant82/elnet-dashboard/internal/server"
	"github.com/vikrant82/elnet-dashboard/internal/tracker"
	"github.com/vikrant82/elnet-dashboard/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Info("starting elnet-dashboard",
		"version", version.Version,
		"database", cfg.DatabasePath,
		"interval", cfg.FetchInterval,
		"http_addr", cfg.HTTPAddr,
	)

	// 2. Register prometheus collectors explicitly (no init side effects)
	metrics.Register()

	// 3. Open the usage store
	store, err := db.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("failed to close database", "error", closeErr)
		}
	}()

	// 4. Metering API client
	client := meterapi.New(cfg.LiveUpdatesAPIURL, cfg.HomeDataAPIURL,
		cfg.BearerToken, cfg.MeterLocation())

	// 5. Notification channels, each optional via config
	notifier, closeNotify, err := buildNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotify()

	// 6. Polling tracker: fetch, validate, detect transitions, persist
	svc := tracker.NewService(cfg, client, store, notifier)
	svc.Start()
	defer svc.Close()

	// 7. Watch the loaded .env file for drift (warn only; restart applies)
	if stopWatch, watchErr := cfg.Watch(); watchErr != nil {
		logger.Warn("config watcher unavailable", "error", watchErr)
	} else {
		defer stopWatch()
	}

	// 8. HTTP API
	api := server.New(store, client, cfg.MeterLocation())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if serveErr := srv.ListenAndServe(); serveErr != nil &&
			!errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	// 9. Block until a shutdown signal or a server fault
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case serveErr := <-errChan:
		return fmt.Errorf("http server error: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

// buildNotifier assembles the configured channels into a fan-out notifier.
// The returned cleanup closes channels that hold connections.
func buildNotifier(cfg *config.Config) (notify.Notifier, func(), error) {
	var channels []notify.Notifier
	cleanup := func() {}

	if tg := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID); tg != nil {
		channels = append(channels, tg)
	}

	mq, err := notify.NewMQTT(cfg.MQTTBroker, cfg.MQTTTopic)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to connect mqtt: %w", err)
	}
	if mq != nil {
		channels = append(channels, mq)
		cleanup = mq.Close
	}

	if cfg.DesktopNotify {
		channels = append(channels, notify.NewDesktop())
	}

	multi := notify.NewMulti(channels...)
	if multi.Channels() == 0 {
		logger.Warn("no notification channels configured, events will only be logged")
	} else {
		logger.Info("notification channels ready", "count", multi.Channels())
	}

	return multi, cleanup, nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`elnet-dashboard - prepaid power meter usage tracker

Polls the metering API on an interval, records usage deltas to SQLite,
detects grid/generator transitions and serves the usage dashboard API.

Usage:
  elnet-dashboard [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Configuration is read from the environment or a .env file. At minimum
LIVE_UPDATES_API_URL, HOME_DATA_API_URL and POWER_USAGE_BEARER_TOKEN must
be set.`)
}
