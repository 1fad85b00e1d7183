package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/config"
	"github.com/edukit-cloud/edukit/internal/db"
	dbMemory "github.com/edukit-cloud/edukit/internal/db/memory"
	dbRedis "github.com/edukit-cloud/edukit/internal/db/redis"
	"github.com/edukit-cloud/edukit/internal/extract"
	"github.com/edukit-cloud/edukit/internal/guard"
	logpkg "github.com/edukit-cloud/edukit/internal/logger"
	"github.com/edukit-cloud/edukit/internal/metrics"
	"github.com/edukit-cloud/edukit/internal/repository/registry"
	"github.com/edukit-cloud/edukit/internal/repository/resultcache"
	chiTransport "github.com/edukit-cloud/edukit/internal/transport/chi"
	openaiGen "github.com/edukit-cloud/edukit/internal/transport/openai"
	generationuc "github.com/edukit-cloud/edukit/internal/usecase/generation"
	healthuc "github.com/edukit-cloud/edukit/internal/usecase/health"
	ingestuc "github.com/edukit-cloud/edukit/internal/usecase/ingest"
	vizuc "github.com/edukit-cloud/edukit/internal/usecase/visualization"
	"github.com/edukit-cloud/edukit/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting edukit API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Create cache store based on driver. "off" runs without memoization.
	var store db.Store
	switch cfg.Cache.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
	case "memory":
		store = dbMemory.NewStore(cfg.Cache.MemorySize, time.Duration(cfg.Cache.TTLSec)*time.Second)
	case "off":
		// leave store nil
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}

	ctx := context.Background()
	if store != nil {
		defer store.Close()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store")
	}

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Result cache — nil when the store is off
	var cache *resultcache.Cache
	if store != nil {
		cache = resultcache.New(
			store,
			cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.CacheOperationsTotal,
			logger,
		)
	}

	// Ingestion pipeline components
	annotator := annotate.New(annotate.NewProseParser(),
		annotate.WithWindowSize(cfg.Ingest.AnnotationWindow),
		annotate.WithTopN(cfg.Ingest.KeywordTopN),
	)
	extractor := extract.New(nil)
	contentGuard := guard.New()
	documents := registry.New()

	// Generation gateway
	generator := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:        cfg.Generation.APIKey,
		BaseURL:       cfg.Generation.BaseURL,
		Model:         cfg.Generation.Model,
		Temperature:   cfg.Generation.Temperature,
		RetryAttempts: cfg.Generation.RetryAttempts,
		Logger:        logger,
	})

	// Use case services
	ingestSvc := ingestuc.New(documents, extractor, contentGuard, annotator, logger).
		WithChunkSize(cfg.Ingest.ChunkSize)
	generationSvc := generationuc.New(documents, generator, annotator, cache, logger).
		WithTimeout(time.Duration(cfg.Generation.TimeoutSec) * time.Second)
	vizSvc := vizuc.New(documents, annotator, cache, logger)

	// Health service — store may be nil when caching is off
	var pinger healthuc.StorePinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, generator)

	// Chi server
	server := chiTransport.NewServer(ingestSvc, generationSvc, vizSvc, healthSvc, logger).
		WithMaxUploadBytes(cfg.Ingest.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
