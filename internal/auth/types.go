package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// signs and verifies session tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// gin context keys set by the middleware
const (
	contextUserID  = "user_id"
	contextEmail   = "user_email"
	contextIsAdmin = "is_admin"
)
