package auth

import "codeberg.org/gamevault/server/gamevault/users"

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=72,maxbytes=72"`
	DisplayName string `json:"display_name" binding:"max=50"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse returned after register and login
type AuthResponse struct {
	User      *users.User `json:"user"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}
