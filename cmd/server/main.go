// main wires the resolution pipeline and its providers, exposes the HTTP
// API, and keeps the server lifecycle small. Business logic lives in the
// internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sectracker/internal/audit"
	"sectracker/internal/directory"
	"sectracker/internal/extraction"
	extractionhandler "sectracker/internal/extraction/handler"
	extractionstore "sectracker/internal/extraction/store"
	"sectracker/internal/filings"
	filingshandler "sectracker/internal/filings/handler"
	httpapi "sectracker/internal/http"
	"sectracker/internal/kgraph"
	"sectracker/internal/llm"
	llmhandler "sectracker/internal/llm/handler"
	llmmetrics "sectracker/internal/llm/metrics"
	"sectracker/internal/lookup"
	lookuphandler "sectracker/internal/lookup/handler"
	lookupmetrics "sectracker/internal/lookup/metrics"
	"sectracker/internal/match"
	"sectracker/internal/platform/config"
	"sectracker/internal/platform/httpserver"
	"sectracker/internal/platform/logger"
	platformredis "sectracker/internal/platform/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ticker directory and matcher. The directory loads lazily on first use.
	provider := directory.NewHTTPProvider(cfg.SECBaseURL, cfg.SECUserAgent, nil)
	registry := directory.NewRegistry(provider)
	matcher := match.New(registry)

	var checks []httpapi.HealthCheck

	// Optional Redis entity cache for the knowledge graph.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	graphOpts := []kgraph.Option{}
	if redisClient != nil {
		defer redisClient.Close()
		graphOpts = append(graphOpts,
			kgraph.WithCache(kgraph.NewRedisEntityCache(redisClient, kgraph.DefaultEntityTTL, log)))
		checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: redisClient.Health})
		log.Info("knowledge-graph entity cache enabled")
	}
	graph := kgraph.New(cfg.WikidataBaseURL, cfg.SECUserAgent, graphOpts...)

	// Model client: drives both the generative lookup stage and extraction.
	model := llm.NewClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel,
		llm.WithLogger(log),
		llm.WithMetrics(llmmetrics.New()),
	)

	// Audit trail: events flow through a channel-fed worker into the store,
	// so resolution latency never depends on the audit sink.
	auditStore, closeAudit, err := buildAuditStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	publisher := audit.NewChannelPublisher(256, log)
	worker := audit.NewWorker(publisher.Inbox(), auditStore, log)
	workerDone := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(workerDone)
	}()

	lookupOpts := []lookup.Option{
		lookup.WithGraph(graph),
		lookup.WithAudit(publisher),
		lookup.WithLogger(log),
		lookup.WithMetrics(lookupmetrics.New()),
	}
	if cfg.OpenRouterAPIKey != "" {
		lookupOpts = append(lookupOpts, lookup.WithGenerative(model))
	} else {
		log.Warn("no model API key configured, generative stage disabled")
	}
	lookupService, err := lookup.New(matcher, registry, lookupOpts...)
	if err != nil {
		return err
	}

	// Filings and extraction.
	filingsClient := filings.NewClient(cfg.SECDataURL, cfg.SECBaseURL, cfg.SECUserAgent, registry,
		filings.WithLogger(log))

	extractionOpts := []extraction.Option{extraction.WithLogger(log)}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgStore := extractionstore.NewPostgres(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		extractionOpts = append(extractionOpts, extraction.WithStore(pgStore))
		checks = append(checks, httpapi.HealthCheck{Name: "postgres", Check: pool.Ping})
		log.Info("extraction store backed by postgres")
	} else {
		extractionOpts = append(extractionOpts, extraction.WithStore(extractionstore.NewMemory()))
	}
	extractionService, err := extraction.New(filingsClient, model, extractionOpts...)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter([]httpapi.Registrar{
		lookuphandler.New(lookupService, log),
		filingshandler.New(filingsClient, log),
		extractionhandler.New(extractionService, log),
		llmhandler.New(model),
	}, checks)

	srv := httpserver.New(cfg.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-workerDone
	return nil
}

// buildAuditStore picks Kafka when brokers are configured, in-memory
// otherwise.
func buildAuditStore(cfg config.Config, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewMemoryStore(), func() {}, nil
	}
	kafkaStore, err := audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.Kafka.Topic)
	return kafkaStore, kafkaStore.Close, nil
}
