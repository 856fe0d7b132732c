// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/joho/godotenv"

	"github.com/tomtom215/sidequest/internal/api"
	"github.com/tomtom215/sidequest/internal/config"
	"github.com/tomtom215/sidequest/internal/events"
	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/session"
	"github.com/tomtom215/sidequest/internal/supervisor"
	"github.com/tomtom215/sidequest/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Sidequest with supervisor tree")
	logging.Info().
		Bool("mock_search", cfg.UseMockSearch()).
		Bool("judge", cfg.JudgeEnabled()).
		Bool("reviews", cfg.Reviews.Enabled).
		Str("session_store", cfg.Session.Store).
		Bool("events", cfg.Events.Enabled).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Recommendation engine
	parts, err := buildEngine(cfg, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}
	defer parts.cache.Close()
	logging.Info().
		Strs("providers", parts.providers.names).
		Int("top_n", parts.engine.TopN()).
		Msg("Recommendation engine initialized")

	// Question sessions
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	sessions := session.NewService(store, logging.WithComponent("session"))

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if bs, ok := store.(*session.BadgerStore); ok {
		tree.AddDataService(services.NewBadgerGCService(bs.DB(), 0, 0, logging.Logger()))
		logging.Info().Str("path", cfg.Session.Path).Msg("Badger value log GC added to data layer")
	}

	// Recommendation events
	handlerCfg := api.HandlerConfig{
		Recommender:    parts.engine,
		Sessions:       sessions,
		Breakers:       parts.providers.breakers,
		Providers:      parts.providers.names,
		JudgeEnabled:   parts.judge,
		Version:        version,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.Events.Enabled {
		bus, err := events.NewBus(ctx, cfg.Events, logging.Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create event bus")
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
		auditor := events.NewAuditor(logging.Logger())
		tree.AddMessagingService(services.NewRouterService("event-router", func() (*message.Router, error) {
			return events.NewRouter(events.DefaultRouterConfig(), bus, auditor)
		}))
		handlerCfg.Events = bus
		logging.Info().Str("transport", bus.Transport()).Str("topic", bus.Topic()).Msg("Event bus added to messaging layer")
	}

	// HTTP API
	handler := api.NewHandler(handlerCfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to API layer")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Serve returns once the signal context is canceled and every layer has
	// stopped, or when the root supervisor gives up.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
