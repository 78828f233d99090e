package games

import (
	"time"

	"codeberg.org/gamevault/server/internal/upstream"
)

// a game offered by the provider
type Game struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Provider string  `json:"provider"`
	RTP      float64 `json:"rtp,omitempty"`
	Enabled  bool    `json:"enabled"`
}

// a provider session the player is redirected to
type LaunchSession struct {
	GameID       string    `json:"game_id"`
	URL          string    `json:"launch_url"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// talks to the external games provider
type Client struct {
	baseURL string
	apiKey  string
	http    *upstream.Client
}

type listGamesResponse struct {
	Games []Game `json:"games"`
}

type launchRequest struct {
	PlayerID string `json:"player_id"`
	Currency string `json:"currency"`
}
