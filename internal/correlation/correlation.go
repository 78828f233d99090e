package correlation

import (
	"context"
	"regexp"

	"codeberg.org/gamevault/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// request and response header carrying the id
	Header = "X-Correlation-ID"

	// gin context key
	ContextKey = "correlation_id"

	// length of the display prefix
	shortLength = 8
)

// inbound ids are reused only when they look like opaque tokens
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type contextKey struct{}

// generates a new correlation id
func New() string {
	return uuid.NewString()
}

// reports whether an inbound id can be reused as-is
func Valid(id string) bool {
	return validID.MatchString(id)
}

// stores the id on a context
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// returns the id stored on a context
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// returns the id of the request handled by c, falling back to the request context
func FromGin(c *gin.Context) string {
	if id := c.GetString(ContextKey); id != "" {
		return id
	}

	if c.Request != nil {
		if id, ok := FromContext(c.Request.Context()); ok {
			return id
		}
	}

	return ""
}

// truncates an id for display
func Short(id string) string {
	if len(id) <= shortLength {
		return id
	}

	return id[:shortLength]
}

// assigns a correlation id to every request and echoes it in the response header
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !Valid(id) {
			id = New()
		}

		c.Set(ContextKey, id)
		c.Header(Header, id)

		ctx := WithID(c.Request.Context(), id)
		ctx = logger.WithContext(ctx, logger.With("correlation_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
