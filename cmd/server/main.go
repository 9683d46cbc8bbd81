// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

// Package main is the entry point for the Betty Organic back-office server.
//
// The server keeps back-office operators on top of incoming orders in real
// time and serves aggregated sales reports. Order changes flow through a
// NATS JetStream change feed into a reconciliation engine that maintains
// the set of orders awaiting attention; a periodic snapshot poll repairs
// any divergence when feed delivery drops events.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, YAML, env vars)
//  2. Database: DuckDB order store
//  3. NATS: embedded JetStream server (default) plus the order stream
//  4. Feed: Watermill publisher and durable subscriber
//  5. Notifications: reconciliation notifier and websocket presenter
//  6. Reports: sales aggregation service
//  7. HTTP Server: Chi REST API plus the websocket upgrade
//
// Everything long-running runs under a suture supervisor tree; see the
// supervisor package for the layering.
//
// # Configuration
//
// All settings come from environment variables or an optional config.yaml;
// the config package documents every variable. Quick start:
//
//	export DUCKDB_PATH=/data/betty.duckdb
//	export HTTP_PORT=8090
//	./betty-organic
//
// Against an external NATS cluster:
//
//	export NATS_EMBEDDED=false
//	export NATS_URL=nats://nats:4222
//	./betty-organic
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP server
// drains in-flight requests (10s timeout), the feed subscriber closes its
// durable consumer, and the database closes last.
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

	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/api"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/config"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/database"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/feed"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/logging"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/models"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/notify"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/reconcile"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/report"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/supervisor"
	ws "github.com/Yosef-Ali/betty-organic-sub002/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_embedded", cfg.NATS.EmbeddedServer).
		Msg("Starting Betty Organic back office")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// Seed demo orders for local development and screenshot tests.
	if cfg.Database.SeedMockData {
		logging.Info().Msg("Mock data seeding enabled (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed mock data")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change-feed transport: embedded JetStream by default, external
	// cluster when NATS_EMBEDDED=false.
	natsURL := cfg.NATS.URL
	if cfg.NATS.EmbeddedServer {
		serverCfg := feed.DefaultServerConfig()
		serverCfg.StoreDir = cfg.NATS.StoreDir
		if cfg.NATS.MaxMemory > 0 {
			serverCfg.JetStreamMaxMem = cfg.NATS.MaxMemory
		}
		if cfg.NATS.MaxStore > 0 {
			serverCfg.JetStreamMaxStore = cfg.NATS.MaxStore
		}

		embedded, err := feed.NewEmbeddedServer(&serverCfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := embedded.Shutdown(shutdownCtx); err != nil {
				logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
			}
		}()

		natsURL = embedded.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	}

	// The order stream must exist before the publisher and the durable
	// subscriber bind to it: wildcard subjects cannot auto-provision.
	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer nc.Close()

	streamCfg := feed.DefaultStreamConfig(cfg.NATS.StreamRetentionDays)
	streamMgr, err := feed.NewStreamManager(nc, &streamCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create stream manager")
	}
	if _, err := streamMgr.EnsureStream(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure order stream")
	}
	logging.Info().Str("stream", streamCfg.Name).Msg("Order stream ready")

	wmLogger := logging.NewWatermillAdapter()

	publisher, err := feed.NewPublisher(feed.DefaultPublisherConfig(natsURL), wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create feed publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feed publisher")
		}
	}()

	// Circuit breaker keeps HTTP handlers responsive when the feed is
	// down; the snapshot poll repairs delivery in the meantime.
	publisher.SetCircuitBreaker(gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:    "feed-publish",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Publish circuit breaker state changed")
		},
	}))

	// Websocket hub, sound player, and presenter form the delivery side
	// of the notification pipeline.
	hub := ws.NewHub()

	player := notify.NewThrottledPlayer(cfg.Notifications.SoundMinInterval, hub.BroadcastSoundCue)
	presenter := notify.NewPresenter(player, hub, nil)
	hub.SetInteractionHandler(presenter.MarkInteraction)

	notifier := reconcile.NewNotifier(db, presenter, reconcile.Config{
		PollInterval:  cfg.Notifications.PollInterval,
		SnapshotLimit: cfg.Notifications.SnapshotLimit,
	})
	// The presenter forces a snapshot poll whenever the feed resubscribes.
	presenter.SetRefresher(notifier)

	subscriber, err := feed.NewSubscriber(
		feedSubscriberConfig(cfg, natsURL),
		wmLogger,
		notifier.HandleConnectionState,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create feed subscriber")
	}
	defer func() {
		if err := subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feed subscriber")
		}
	}()

	consumer := subscriber.NewEventHandler(feed.TopicWildcard).Handle(notifier.HandleEvent)

	aggregator := report.NewAggregator(db, report.ServiceConfig{
		RefreshInterval: cfg.Reports.RefreshInterval,
		Windows: report.Config{
			WindowDays:       cfg.Reports.WindowDays,
			TopProductsLimit: cfg.Reports.TopProductsLimit,
			LookbackMonths:   cfg.Reports.LookbackMonths,
		},
	})
	// Clients get a freshness ping over websocket and refetch via REST.
	aggregator.SetOnPublish(func(m *models.ReportMetrics) {
		hub.BroadcastReportUpdate(m.GeneratedAt, m.Stale)
	})

	handler := api.NewHandler(db, publisher, presenter, aggregator, notifier, hub, &cfg.API)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Bridge zerolog to slog for sutureslog.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(aggregator)
	tree.AddMessagingService(hub)
	tree.AddMessagingService(notifier)
	tree.AddMessagingService(consumer)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor finishes.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
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

// feedSubscriberConfig builds the durable subscriber config from the
// application configuration.
func feedSubscriberConfig(cfg *config.Config, natsURL string) *feed.SubscriberConfig {
	durable := cfg.NATS.DurableName
	if durable == "" {
		durable = "order-notifier"
	}
	subCfg := feed.DefaultSubscriberConfig(natsURL, durable)
	return &subCfg
}
