package auth

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/gamevault/server/gamevault/users"
	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// compared against when the email is unknown so both failures cost the same
var dummyHash, _ = auth.HashPassword("gamevault-timing-equalizer") //nolint:errcheck // constant input

// RegisterHandler godoc
// @Summary Register a new account
// @Description Creates a player account and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account data"
// @Success 201 {object} AuthResponse
// @Failure 409 {object} errors.Response "E3003 email already registered"
// @Failure 422 {object} errors.Response
// @Router /api/v1/auth/register [post]
func RegisterHandler(userRepo users.Store, tokens *auth.Manager, notifier *notifications.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !errors.BindJSON(c, &req) {
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		user, err := userRepo.Create(c.Request.Context(), users.CreateParams{
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: hash,
			DisplayName:  strings.TrimSpace(req.DisplayName),
		})
		if stderrors.Is(err, users.ErrEmailTaken) {
			errors.Abort(c, errors.NewSafe(errors.CodeEmailTaken, errors.WithStatus(http.StatusConflict)))
			return
		}

		if err != nil {
			errors.Abort(c, fmt.Errorf("register: %w", err))
			return
		}

		token, err := tokens.GenerateJWT(user.ID, user.Email, user.IsAdmin)
		if err != nil {
			errors.Abort(c, fmt.Errorf("register: sign token: %w", err))
			return
		}

		logger.FromContext(c.Request.Context()).Infow("user registered", "user_id", user.ID)

		notifier.NotifyAdminsAsync(notifications.Notification{
			Title: "New registration",
			Level: notifications.LevelInfo,
			Fields: map[string]string{
				"user_id": user.ID,
				"email":   user.Email,
			},
		})

		c.JSON(http.StatusCreated, authResponse(user, token, tokens))
	}
}

// LoginHandler godoc
// @Summary Sign in
// @Description Exchanges email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.Response "E1001 invalid credentials"
// @Failure 403 {object} errors.Response "E1005 account disabled"
// @Failure 422 {object} errors.Response
// @Router /api/v1/auth/login [post]
func LoginHandler(userRepo users.Store, tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !errors.BindJSON(c, &req) {
			return
		}

		user, err := userRepo.FindByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
		if err != nil && !stderrors.Is(err, users.ErrNotFound) {
			errors.Abort(c, fmt.Errorf("login: %w", err))
			return
		}

		if user == nil {
			auth.CheckPassword(dummyHash, req.Password)
			errors.Abort(c, invalidCredentials())
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			errors.Abort(c, invalidCredentials())
			return
		}

		if user.IsDisabled {
			errors.Abort(c, errors.NewSafe(errors.CodeAccountDisabled, errors.WithStatus(http.StatusForbidden)))
			return
		}

		token, err := tokens.GenerateJWT(user.ID, user.Email, user.IsAdmin)
		if err != nil {
			errors.Abort(c, fmt.Errorf("login: sign token: %w", err))
			return
		}

		c.JSON(http.StatusOK, authResponse(user, token, tokens))
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.Response
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(userRepo users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Abort(c, errors.Unauthenticated())
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if stderrors.Is(err, users.ErrNotFound) {
			// token outlived its account
			errors.Abort(c, errors.NewSafe(errors.CodeTokenInvalid, errors.WithStatus(http.StatusUnauthorized)))
			return
		}

		if err != nil {
			errors.Abort(c, fmt.Errorf("current user: %w", err))
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

func invalidCredentials() error {
	return errors.NewSafe(errors.CodeInvalidCredentials, errors.WithStatus(http.StatusUnauthorized))
}

func authResponse(user *users.User, token string, tokens *auth.Manager) AuthResponse {
	return AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(tokens.TTL().Seconds()),
	}
}
