package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"codeberg.org/gamevault/server/api/rest/admin"
	"codeberg.org/gamevault/server/api/rest/auth"
	"codeberg.org/gamevault/server/api/rest/games"
	"codeberg.org/gamevault/server/api/rest/health"
	"codeberg.org/gamevault/server/api/rest/wallet"
	"codeberg.org/gamevault/server/internal/correlation"
	"codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/metrics"
	"codeberg.org/gamevault/server/internal/ratelimit"
	"codeberg.org/gamevault/server/internal/security"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// paths never rate limited
var unlimitedPaths = []string{"/health", "/metrics"}

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config

	globalLimit, err := ratelimit.Middleware(ratelimit.Options{
		Rate:   cfg.RateLimit,
		Name:   "global",
		Redis:  server.redis,
		Exempt: unlimitedPaths,
	})
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	authLimit, err := ratelimit.Middleware(ratelimit.Options{
		Rate:  cfg.RateLimitAuth,
		Name:  "auth",
		Redis: server.redis,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth rate limiter: %w", err)
	}

	// order matters: metrics wraps the error middleware so it sees the final
	// status, and every later middleware can fail through the error middleware
	router.Use(correlation.Middleware())
	router.Use(metrics.Middleware())
	router.Use(errors.Middleware())
	router.Use(security.Headers(cfg.IsProduction()))

	if corsMiddleware := CORSMiddleware(cfg.CORSAllowedOrigins, cfg.IsProduction()); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.Use(globalLimit)

	router.NoRoute(errors.NoRoute)
	router.NoMethod(errors.NoMethod)

	router.GET("/health", health.Handler(healthChecks(server)...))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.userRepo, server.services.Tokens, server.services.Notifier, authLimit)
		wallet.RegisterRoutes(v1, server.walletRepo, server.services.Tokens, server.services.Notifier, cfg.WithdrawalAlertThreshold)
		games.RegisterRoutes(v1, server.services.Games, server.services.Tokens, cfg.WalletCurrency)
		admin.RegisterRoutes(v1, server.services.Tokens, server.services.Notifier)
	}

	return nil
}

// builds the CORS middleware; with no configured origins every origin is
// allowed outside production and CORS stays off in production
func CORSMiddleware(origins []string, production bool) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", correlation.Header},
		ExposeHeaders:    []string{correlation.Header, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case slices.Contains(origins, "*"):
		config.AllowAllOrigins = true
	case len(origins) > 0:
		config.AllowOrigins = origins
	case production:
		return nil
	default:
		config.AllowAllOrigins = true
	}

	return cors.New(config)
}

func healthChecks(server *Server) []health.Check {
	var checks []health.Check

	if server.db != nil {
		checks = append(checks, health.Check{Name: "database", Probe: server.db.Ping})
	}

	if server.redis != nil {
		checks = append(checks, health.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return server.redis.Ping(ctx).Err()
		}})
	}

	return checks
}
