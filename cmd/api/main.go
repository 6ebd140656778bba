package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/accounts"
	"github.com/xelth-com/huissierpro/internal/ai"
	"github.com/xelth-com/huissierpro/internal/cache"
	"github.com/xelth-com/huissierpro/internal/config"
	"github.com/xelth-com/huissierpro/internal/database"
	"github.com/xelth-com/huissierpro/internal/evidence"
	"github.com/xelth-com/huissierpro/internal/handlers"
	"github.com/xelth-com/huissierpro/internal/logging"
	"github.com/xelth-com/huissierpro/internal/remote"
	"github.com/xelth-com/huissierpro/internal/repository"
	"github.com/xelth-com/huissierpro/internal/services/acts"
	"github.com/xelth-com/huissierpro/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Local cache (always available)
	local, err := cache.NewFileStore(cfg.Cache.Dir)
	if err != nil {
		logger.Fatal("failed to open local cache", zap.String("dir", cfg.Cache.Dir), zap.Error(err))
	}

	// 3. Remote store and accounts. Without a database the node runs fully offline.
	var (
		rs    remote.Store = remote.Offline{}
		users accounts.Store
		db    *database.DB
	)
	if cfg.Remote.Enabled {
		db, err = database.Connect(cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := db.Migrate(); err != nil {
			logger.Warn("schema migration failed", zap.Error(err))
		}
		rs = remote.NewPostgres(db.DB)
		users = accounts.NewGormStore(db.DB)
	} else {
		logger.Info("remote store disabled, running offline")
		users = accounts.NewCacheStore(local)
	}

	// 4. Sync event hub
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	repo := repository.New(local, rs, logger,
		repository.WithTimeout(cfg.Remote.Timeout),
		repository.WithNotifier(hub),
	)

	// 5. Act generator
	var generator ai.Generator = ai.NewTemplateGenerator(cfg.AI.City)
	if cfg.AI.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, logger)
		if err != nil {
			logger.Warn("gemini unavailable, using template generator", zap.Error(err))
		} else {
			defer gemini.Close()
			generator = gemini
		}
	}

	service := acts.NewService(repo, generator, evidence.NewStore(cfg.Evidence.MaxBytes), logger)
	router := handlers.NewRouter(handlers.Deps{
		Acts:           service,
		Study:          repo,
		Accounts:       users,
		Hub:            hub,
		JWTSecret:      cfg.JWTSecret,
		MaxUploadBytes: int64(cfg.Evidence.MaxBytes),
		Logger:         logger,
	})

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.NodeEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	// Let in-flight remote pushes finish; their markers stay pending otherwise.
	repo.Wait()

	// Close database (this also stops embedded PostgreSQL)
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("database close error", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
