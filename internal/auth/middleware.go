package auth

import (
	"errors"
	"net/http"
	"strings"

	apperrors "codeberg.org/gamevault/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// validates JWT tokens and adds user info to context
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperrors.Abort(c, apperrors.Unauthenticated())
			return
		}

		claims, err := m.ValidateJWT(token)
		if err != nil {
			apperrors.Abort(c, tokenError(err))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// validates JWT if present but doesn't require it
func (m *Manager) OptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := m.ValidateJWT(token); err == nil {
				setClaims(c, claims)
			}
		}

		c.Next()
	}
}

// requires an admin token; must run after Middleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			apperrors.Abort(c, apperrors.NewSafe(apperrors.CodePermissionDenied, apperrors.WithStatus(http.StatusForbidden)))
			return
		}

		c.Next()
	}
}

// extracts user_id from context after Middleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextUserID)
	return userID, userID != ""
}

// extracts the email from context after Middleware
func GetEmail(c *gin.Context) string {
	return c.GetString(contextEmail)
}

// reports whether the request carries an admin token
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(contextIsAdmin)
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(contextUserID, claims.UserID)
	c.Set(contextEmail, claims.Email)
	c.Set(contextIsAdmin, claims.IsAdmin)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenError(err error) error {
	if errors.Is(err, ErrTokenExpired) {
		return apperrors.NewSafe(apperrors.CodeTokenExpired,
			apperrors.WithStatus(http.StatusUnauthorized),
			apperrors.WithCause(err),
		)
	}

	return apperrors.NewSafe(apperrors.CodeTokenInvalid,
		apperrors.WithStatus(http.StatusUnauthorized),
		apperrors.WithCause(err),
	)
}
