package admin

import (
	"net/http"

	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// NotifyAdminsHandler godoc
// @Summary Notify admins
// @Description Sends a message to every admin Telegram chat
// @Tags admin
// @Accept json
// @Produce json
// @Param request body NotifyRequest true "Message"
// @Success 202 {object} NotifyResponse
// @Failure 403 {object} errors.Response "E1004 not an admin"
// @Failure 500 {object} errors.Response "E5001 telegram not configured"
// @Failure 502 {object} errors.Response "E4003 delivery failed"
// @Router /api/v1/admin/notifications [post]
// @Security BearerAuth
func NotifyAdminsHandler(notifier *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NotifyRequest
		if !errors.BindJSON(c, &req) {
			return
		}

		title := req.Title
		if title == "" {
			title = "Admin message"
		}

		level := notifications.Level(req.Level)
		if level == "" {
			level = notifications.LevelInfo
		}

		userID, _ := auth.GetUserID(c)

		err := notifier.NotifyAdmins(c.Request.Context(), notifications.Notification{
			Title:  title,
			Body:   req.Message,
			Level:  level,
			Fields: map[string]string{"sent_by": auth.GetEmail(c)},
		})
		if err != nil {
			errors.Abort(c, err)
			return
		}

		logger.FromContext(c.Request.Context()).Infow("admin notification sent", "sent_by", userID)

		c.JSON(http.StatusAccepted, NotifyResponse{Status: "sent"})
	}
}
