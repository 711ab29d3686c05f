package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/events"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting lsi search service",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"approximation", cfg.LSI.Approximation,
	)

	settings, err := corpus.SettingsFromConfig(cfg.LSI, cfg.Tokenizer)
	if err != nil {
		slog.Error("invalid lsi settings", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()

	var store corpus.Store
	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Postgres, cfg.Search.LoadAttempts)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgStore := corpus.NewPostgresStore(db)
		if err := pgStore.Migrate(ctx); err != nil {
			slog.Error("failed to migrate document schema", "error", err)
			os.Exit(1)
		}
		store = pgStore
		checker.Register("postgres", health.PingCheck(db.Ping, true))
	default:
		store = corpus.NewMemoryStore()
		checker.Register("postgres", health.Disabled)
	}

	if cfg.Store.SeedFile != "" {
		seed, err := corpus.LoadSeedFile(cfg.Store.SeedFile)
		if err != nil {
			slog.Error("failed to read seed file", "path", cfg.Store.SeedFile, "error", err)
			os.Exit(1)
		}
		added, err := corpus.Seed(ctx, store, seed)
		if err != nil {
			slog.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
		slog.Info("store seeded", "path", cfg.Store.SeedFile, "added", added)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdownMetrics(context.Background())
	}

	exec := executor.New(corpus.NewBuilder(store, settings, cfg.Search.LoadAttempts), executor.Options{
		MinScore:       cfg.Search.MinScore,
		RebuildTimeout: cfg.Search.RebuildTimeout,
		Metrics:        m,
	})
	if _, err := exec.Rebuild(ctx); err != nil {
		// An empty store is fine at startup; the first document triggers a build.
		slog.Warn("initial corpus build failed, serving 503 until a rebuild succeeds", "error", err)
	}
	checker.Register("corpus", health.CorpusCheck(func() (string, int, bool) {
		snap := exec.Snapshot()
		if snap == nil {
			return "", 0, false
		}
		return snap.BuildID, len(snap.Documents), true
	}))

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			checker.Register("redis", health.PingCheck(func(context.Context) error { return err }, false))
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.PingCheck(redisClient.Ping, false))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	} else {
		checker.Register("redis", health.Disabled)
	}

	mux := http.NewServeMux()
	var collector *analytics.Collector
	var notifier handler.ChangeNotifier = events.NewLocalNotifier(exec)
	if cfg.Kafka.Enabled {
		analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer analyticsProducer.Close()
		collector = analytics.NewCollector(analyticsProducer, 10000)
		collector.Start(ctx)
		defer collector.Close()

		aggregator := analytics.NewAggregator()
		analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents,
			kafka.InstanceGroup(cfg.Kafka.ConsumerGroup, "analytics"), analytics.HandleEvent(aggregator))
		go func() {
			if err := analyticsConsumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		mux.HandleFunc("GET /api/v1/analytics", analytics.StatsHandler(aggregator))

		changeProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CorpusChanged)
		defer changeProducer.Close()
		notifier = events.NewKafkaNotifier(changeProducer)
		changeConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CorpusChanged,
			kafka.InstanceGroup(cfg.Kafka.ConsumerGroup, "rebuild"), events.RebuildHandler(exec))
		go func() {
			if err := changeConsumer.Start(ctx); err != nil {
				slog.Error("corpus-changed consumer error", "error", err)
			}
		}()
		slog.Info("kafka wiring enabled",
			"search_events", cfg.Kafka.Topics.SearchEvents,
			"corpus_changed", cfg.Kafka.Topics.CorpusChanged,
		)
	}

	h := handler.New(exec, store, handler.Options{
		Tokenizer:    settings.Tokenizer,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
		Cache:        queryCache,
		Collector:    collector,
		Notifier:     notifier,
		Metrics:      m,
	})
	h.Register(mux)
	mux.HandleFunc("GET /health", checker.Handler())
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimitPerMinute > 0 {
		chain = middleware.RateLimit(middleware.NewLimiter(cfg.Server.RateLimitPerMinute, time.Minute))(chain)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.NewCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	chain = middleware.Instrument(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
