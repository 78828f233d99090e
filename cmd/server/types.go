package main

import (
	"codeberg.org/gamevault/server/gamevault/users"
	"codeberg.org/gamevault/server/gamevault/wallets"
	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/config"
	"codeberg.org/gamevault/server/internal/games"
	"codeberg.org/gamevault/server/internal/notifications"
	"codeberg.org/gamevault/server/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	config     *config.Config
	db         *storage.Client // nil when running on in-memory repositories
	redis      *redis.Client   // nil keeps rate-limit counters in memory
	userRepo   users.Store
	walletRepo wallets.Store
	services   *Services
	router     *gin.Engine
}

// holds all external service clients (tokens, games provider, admin notifications)
type Services struct {
	Tokens   *auth.Manager
	Games    *games.Client
	Notifier *notifications.Service
}
