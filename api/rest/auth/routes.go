package auth

import (
	"codeberg.org/gamevault/server/gamevault/users"
	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes; limit guards the credential endpoints
func RegisterRoutes(router *gin.RouterGroup, userRepo users.Store, tokens *auth.Manager, notifier *notifications.Service, limit gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", limit, RegisterHandler(userRepo, tokens, notifier))
		authGroup.POST("/login", limit, LoginHandler(userRepo, tokens))
		authGroup.GET("/me", tokens.Middleware(), GetCurrentUserHandler(userRepo))
	}
}
