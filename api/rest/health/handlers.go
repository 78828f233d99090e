package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/gamevault/server/internal/errors"
	"github.com/gin-gonic/gin"
)

const (
	serviceName  = "gamevault"
	version      = "1.0.0"
	probeTimeout = 2 * time.Second
)

// returns the server health status; a failing check reports the service unavailable
func Handler(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := make(map[string]string, len(checks))

		for _, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
			err := check.Probe(ctx)
			cancel()

			if err != nil {
				errors.Abort(c, errors.NewSafe(errors.CodeDatabase,
					errors.WithStatus(http.StatusServiceUnavailable),
					errors.WithDetail("check", check.Name),
					errors.WithCause(err),
				))
				return
			}

			results[check.Name] = "ok"
		}

		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
