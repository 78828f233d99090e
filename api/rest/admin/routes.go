package admin

import (
	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// registers admin-only routes
func RegisterRoutes(router *gin.RouterGroup, tokens *auth.Manager, notifier *notifications.Service) {
	adminGroup := router.Group("/admin", tokens.Middleware(), auth.AdminMiddleware())
	{
		adminGroup.POST("/notifications", NotifyAdminsHandler(notifier))
	}
}
