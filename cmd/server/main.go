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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/papertrader/simbot/internal/config"
	"github.com/papertrader/simbot/internal/engine"
	"github.com/papertrader/simbot/internal/eventbus"
	"github.com/papertrader/simbot/internal/executor"
	"github.com/papertrader/simbot/internal/market"
	"github.com/papertrader/simbot/internal/server"
	"github.com/papertrader/simbot/internal/strategy"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	log.Info().Msg("Starting trading bot simulator...")

	// Load config
	cfg := config.Load()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Setup optional trade event bus
	var publisher engine.TradePublisher
	if cfg.EventBusEnabled {
		pub, err := eventbus.NewRedisPublisher(cfg.RedisHost, cfg.RedisPort, cfg.TradeStream)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer pub.Close()
		publisher = pub
	}

	// Create engine
	bot := engine.New(
		market.NewSimulator(nil),
		strategy.NewRandom(nil),
		executor.New(),
		publisher,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(bot).Handler(),
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")

	if err := bot.Stop(); err != nil && !errors.Is(err, engine.ErrNotRunning) {
		log.Error().Err(err).Msg("Failed to stop bot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
}
