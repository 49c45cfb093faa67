package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/bot"
	"github.com/user/kino-bot-go/internal/config"
	"github.com/user/kino-bot-go/internal/metrics"
	"github.com/user/kino-bot-go/internal/server"
	"github.com/user/kino-bot-go/internal/store"
	"github.com/user/kino-bot-go/internal/subscription"
	"github.com/user/kino-bot-go/internal/webapp"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second

	// MetricsInterval is how often the store gauges are refreshed
	MetricsInterval = time.Minute
)

func main() {
	// Structured JSON logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	// Root context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mysqlStore, err := store.NewMySQLStore(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Database connection established")

	telegramClient, err := bot.NewClient(cfg.Bot.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram client")
	}
	log.Info().Str("username", telegramClient.Username()).Msg("Telegram client initialized")

	gate := subscription.NewGate(mysqlStore, telegramClient)
	botHandler := bot.NewHandler(mysqlStore, gate, telegramClient, cfg)
	log.Info().Int("admins", len(cfg.Bot.AdminIDs)).Msg("Bot handler initialized")

	collector := metrics.NewCollector(mysqlStore, MetricsInterval)
	collector.Start(ctx)
	log.Info().Msg("Metrics collector started")

	validator := webapp.NewValidator(cfg.Bot.Token)
	httpServer := server.NewServer(mysqlStore, telegramClient, validator, cfg)

	// Signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Start Telegram bot polling in goroutine
	go func() {
		log.Info().Msg("Starting Telegram bot polling")
		updates := telegramClient.GetUpdates()
		for update := range updates {
			metrics.RecordUpdate(updateType(update))
			botHandler.HandleUpdate(ctx, update)
		}
	}()

	log.Info().Msg("Kino Bot started successfully")

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	log.Info().Msg("Starting graceful shutdown...")

	// 1. Stop Telegram bot polling
	telegramClient.StopReceivingUpdates()
	log.Info().Msg("Telegram bot polling stopped")

	// 2. Stop the metrics collector
	collector.Stop()
	log.Info().Msg("Metrics collector stopped")

	// 3. Stop HTTP server
	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	// 4. Close database connection pool
	if err := mysqlStore.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	} else {
		log.Info().Msg("Database connection closed")
	}

	cancel()

	select {
	case <-shutdownCtx.Done():
		if shutdownCtx.Err() == context.DeadlineExceeded {
			log.Warn().Msg("Shutdown timeout exceeded, forcing exit")
		}
	default:
		log.Info().Msg("Graceful shutdown completed")
	}
}

func updateType(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback_query"
	case update.Message != nil && update.Message.IsCommand():
		return "command"
	case update.Message != nil:
		return "message"
	default:
		return "other"
	}
}
