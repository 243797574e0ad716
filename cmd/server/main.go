package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackgladowsky/tierjobs/api"
	dbfs "github.com/jackgladowsky/tierjobs/db"
	"github.com/jackgladowsky/tierjobs/internal/cache"
	"github.com/jackgladowsky/tierjobs/internal/catalog"
	"github.com/jackgladowsky/tierjobs/internal/chat"
	"github.com/jackgladowsky/tierjobs/internal/config"
	"github.com/jackgladowsky/tierjobs/internal/db"
	"github.com/jackgladowsky/tierjobs/internal/repository/sqlite"
	"github.com/jackgladowsky/tierjobs/internal/scheduler"
	"github.com/jackgladowsky/tierjobs/internal/search"
	"github.com/jackgladowsky/tierjobs/internal/stats"
	"github.com/jackgladowsky/tierjobs/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)
	ollama.SetLogger(logger)

	logger.Info("starting tierjobs server", "version", version, "build_time", buildTime)

	ctx := context.Background()

	d, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// The title index is rebuilt from the database on startup so an
	// in-memory index comes up complete.
	idx, err := search.Open(cfg.IndexPath)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}

	repo := sqlite.New(d)

	all, err := repo.ListAllJobs(ctx)
	if err != nil {
		log.Fatalf("Failed to load jobs for indexing: %v", err)
	}
	if err := idx.Reindex(all); err != nil {
		log.Fatalf("Failed to build search index: %v", err)
	}
	logger.Info("search index ready", "jobs", len(all))

	var statsCache cache.Cache
	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		statsCache = redisCache
	} else {
		statsCache = cache.NewMemory()
	}

	llm, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		log.Fatalf("Failed to create ollama client: %v", err)
	}

	maintainer := catalog.NewMaintainer(repo)
	reconciler := catalog.NewReconciler(repo, repo, idx, maintainer, logger)
	planner := catalog.NewPlanner(repo, idx)
	aggregator := stats.NewAggregator(repo, repo, statsCache, cfg.StatsTTL, logger)

	chatSvc, err := chat.NewService(llm, planner, repo, cfg.Ollama.Model, logger)
	if err != nil {
		log.Fatalf("Failed to create chat service: %v", err)
	}

	handler := api.SetupRoutes(&api.Services{
		Planner:    planner,
		Reconciler: reconciler,
		Maintainer: maintainer,
		Companies:  repo,
		Stats:      aggregator,
		Chat:       chatSvc,
	}, version, buildTime)

	var sched *scheduler.Scheduler
	if cfg.RecountSpec != "" {
		sched = scheduler.New(maintainer, aggregator, cfg.RecountSpec, logger)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if sched != nil {
		sched.Stop()
	}
	if err := llm.Close(); err != nil {
		logger.Error("closing ollama client", "err", err)
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("closing redis", "err", err)
		}
	}
	if err := idx.Close(); err != nil {
		logger.Error("closing search index", "err", err)
	}
	if err := d.Close(); err != nil {
		logger.Error("closing db", "err", err)
	}

	logger.Info("server exited")
}
