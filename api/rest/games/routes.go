package games

import (
	"codeberg.org/gamevault/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers all games routes
func RegisterRoutes(router *gin.RouterGroup, provider Provider, tokens *auth.Manager, currency string) {
	gamesGroup := router.Group("/games")
	{
		gamesGroup.GET("", tokens.OptionalMiddleware(), ListGamesHandler(provider))
		gamesGroup.POST("/:id/launch", tokens.Middleware(), LaunchGameHandler(provider, currency))
	}
}
