package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/analytics"
	"github.com/upliftapps/pulse/internal/auth"
	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/insights"
	"github.com/upliftapps/pulse/internal/seed"
	"github.com/upliftapps/pulse/internal/server"
	"github.com/upliftapps/pulse/internal/settings"
	"github.com/upliftapps/pulse/internal/sink"
	"github.com/upliftapps/pulse/internal/store"
	"github.com/upliftapps/pulse/internal/tracker"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load config
	configPath := os.Getenv("CONFIG_PATH")
	var cfg *config.Config
	if configPath == "" {
		cfg = config.Default()
		log.Info().Msg("No CONFIG_PATH set, using defaults")
	} else {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
		}
	}

	// Settings store (display mode, dismissals)
	prefs, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Settings.Path).Msg("Failed to open settings store")
	}
	defer prefs.Close()
	log.Info().Str("path", cfg.Settings.Path).Msg("Settings store opened")

	// Event store
	var eventStore store.Store
	switch cfg.Store.Backend {
	case "redis":
		rs := store.NewRedis(store.RedisOptions{
			Addr:         cfg.Store.Redis.Addr,
			Password:     cfg.Store.Redis.Password,
			DB:           cfg.Store.Redis.DB,
			Key:          cfg.Store.Redis.Key,
			QueryTimeout: cfg.Store.QueryTimeout,
		})
		defer rs.Close()
		eventStore = rs
		log.Info().Str("addr", cfg.Store.Redis.Addr).Msg("Using redis event store")
	default:
		eventStore = store.NewMemory()
		log.Info().Msg("Using memory event store")
	}

	// Aggregation service
	engine := insights.NewEngine(cfg.Insights)
	svc := analytics.NewService(eventStore, engine, cfg.Alerts)
	svc.UseFlags(prefs)

	// Optional Kafka forwarding and alert publishing
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink := sink.NewKafka(cfg.Kafka)
		defer kafkaSink.Close()
		svc.AddForwarder(kafkaSink)
		svc.UseAlertPublisher(kafkaSink)
	}

	// Optional ClickHouse archival
	if cfg.ClickHouse.Addr != "" {
		archiver, err := sink.NewArchiver(cfg.ClickHouse, cfg.Batch)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to ClickHouse")
		}
		defer archiver.Stop()
		svc.AddForwarder(archiver)
		log.Info().Str("addr", cfg.ClickHouse.Addr).Msg("ClickHouse archiver initialized")
	}

	// Tracker for in-process instrumentation
	trk := tracker.New(svc)
	if os.Getenv("PULSE_DEMO") == "1" {
		seed.Demo(context.Background(), trk)
	}

	// Optional API-key auth
	var validator *auth.Validator
	if cfg.Postgres.DSN != "" {
		validator, err = auth.NewValidator(cfg.Postgres, cfg.Store.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create API key validator")
		}
		defer validator.Close()
		log.Info().Msg("API key auth enabled")
	}

	// HTTP server
	srv := server.New(svc, prefs, validator)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: srv.Router(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.HTTPPort).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	httpServer.Shutdown(context.Background())
	log.Info().Msg("Shutdown complete")
}
