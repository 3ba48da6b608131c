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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/embedder/cache"
	localemb "github.com/marketlens/marketlens/internal/embedder/local"
	openaiemb "github.com/marketlens/marketlens/internal/embedder/openai"
	"github.com/marketlens/marketlens/internal/index"
	logpkg "github.com/marketlens/marketlens/internal/logger"
	"github.com/marketlens/marketlens/internal/metrics"
	"github.com/marketlens/marketlens/internal/store"
	redisstore "github.com/marketlens/marketlens/internal/store/redis"
	chiTransport "github.com/marketlens/marketlens/internal/transport/chi"
	analysisuc "github.com/marketlens/marketlens/internal/usecase/analysis"
	answeruc "github.com/marketlens/marketlens/internal/usecase/answer"
	extractuc "github.com/marketlens/marketlens/internal/usecase/extract"
	healthuc "github.com/marketlens/marketlens/internal/usecase/health"
	queryuc "github.com/marketlens/marketlens/internal/usecase/query"
	"github.com/marketlens/marketlens/internal/version"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting marketlens API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterQueryMetrics()

	ctx := context.Background()

	// Document storage and the embedding-cache KV
	var (
		docs store.DocumentStore
		kv   store.KV
	)
	switch cfg.Storage.Driver {
	case "redis":
		rs, err := redisstore.NewStore(redisstore.Config{
			Addrs:     cfg.Storage.Addrs,
			Password:  cfg.Storage.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer rs.Close()

		timeout := time.Duration(cfg.Storage.ReadinessTimeoutSec) * time.Second
		if err := rs.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Storage.Addrs))
		docs, kv = rs, rs
	default:
		docs, kv = store.NewMemory(), store.NewMemoryKV()
	}

	embedder := buildEmbedder(cfg, kv, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	idx := index.New(embedder, cfg.Embedding.Dimensions)

	if err := ingestCorpus(ctx, cfg.Corpus.Path, docs, idx, logger); err != nil {
		logger.Fatal("Failed to ingest corpus", zap.Error(err))
	}

	// Pipeline services
	extractor := extractuc.New()
	analyzer := analysisuc.New(analysisuc.Config{
		VolatilityLow:  cfg.Analysis.VolatilityLow,
		VolatilityHigh: cfg.Analysis.VolatilityHigh,
		TrendEpsilon:   *cfg.Analysis.TrendEpsilon,
		SMAWindow:      cfg.Analysis.SMAWindow,
		HoldOnHighRisk: *cfg.Analysis.HoldOnHighRisk,
	})
	synth := answeruc.New(answeruc.Config{
		MaxExcerptLen: cfg.Answer.MaxExcerptLen,
		MaxFacts:      cfg.Answer.MaxFacts,
	})
	engine := queryuc.New(idx, extractor, analyzer, synth, queryuc.Config{
		DefaultTopK:   cfg.Query.DefaultTopK,
		MinQueryLen:   cfg.Query.MinQueryLen,
		MaxQueryLen:   cfg.Query.MaxQueryLen,
		MinSimilarity: cfg.Query.MinSimilarity,
		Timeout:       time.Duration(cfg.Query.TimeoutSeconds) * time.Second,
	}, logger)

	healthSvc := healthuc.New(docs, newEmbeddingHealthChecker(embedder), idx)

	server := chiTransport.NewServer(engine, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.HTTP.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// ingestCorpus loads the preprocessed corpus, persists it in the document
// store, and indexes everything the store holds. A missing corpus file is
// not fatal: the server starts with an empty index and queries surface
// the empty-index error until documents arrive.
func ingestCorpus(ctx context.Context, path string, docs store.DocumentStore, idx *index.Index, logger *zap.Logger) error {
	corpus, err := store.LoadCorpus(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Corpus file not found, starting with an empty index", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("load corpus: %w", err)
	}

	if err := docs.Add(ctx, corpus); err != nil {
		return fmt.Errorf("store corpus: %w", err)
	}

	stored, err := docs.All(ctx)
	if err != nil {
		return fmt.Errorf("read back corpus: %w", err)
	}

	start := time.Now()
	if err := idx.Add(ctx, stored); err != nil {
		return fmt.Errorf("index corpus: %w", err)
	}

	metrics.DocumentsIndexed.Set(float64(idx.Len()))
	logger.Info("Corpus indexed",
		zap.String("path", path),
		zap.Int("documents", idx.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the embedder chain: provider -> cache decorator.
func buildEmbedder(cfg config.Config, kv store.KV, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder
	switch cfg.Embedding.Provider {
	case "openai":
		embedder = openaiemb.NewEmbedder(&openaiemb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
	default:
		embedder = localemb.New(cfg.Embedding.Dimensions)
	}

	if cfg.Embedding.Cache {
		embedder = cache.New(embedder, kv, logger)
	}
	return embedder
}
