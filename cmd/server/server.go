package main

import (
	"context"
	"fmt"

	"codeberg.org/gamevault/server/gamevault/users"
	"codeberg.org/gamevault/server/gamevault/wallets"
	"codeberg.org/gamevault/server/internal/config"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/storage"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	server := &Server{config: cfg}

	if cfg.DatabaseURL == "" {
		// config.Load refuses this combination in production
		logger.Warn("DATABASE_URL not set, using in-memory repositories")

		server.userRepo = users.NewMemoryRepository()
		server.walletRepo = wallets.NewMemoryRepository(cfg.WalletCurrency)
	} else {
		if err := storage.MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		db, err := storage.NewClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		server.db = db
		server.userRepo = users.NewRepository(db.Pool())
		server.walletRepo = wallets.NewRepository(db.Pool(), cfg.WalletCurrency)
	}

	if cfg.RedisURL != "" {
		rdb, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			server.Close()
			return nil, err
		}

		server.redis = rdb
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	server.services = services

	if err := server.buildRouter(); err != nil {
		server.Close()
		return nil, err
	}

	return server, nil
}

func (s *Server) buildRouter() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// recovery is handled by the error middleware
	router := gin.New()
	router.HandleMethodNotAllowed = true

	if err := RegisterRoutes(router, s); err != nil {
		return err
	}

	s.router = router
	return nil
}

// releases database and redis connections
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.db != nil {
		s.db.Close()
	}
}
