package games

import (
	"context"

	"codeberg.org/gamevault/server/internal/games"
)

// the games provider operations the handlers need
type Provider interface {
	ListGames(ctx context.Context) ([]games.Game, error)
	Launch(ctx context.Context, gameID, userID, currency string) (*games.LaunchSession, error)
}

// GamesListResponse wraps the catalog
type GamesListResponse struct {
	Games []games.Game `json:"games"`
}

// LaunchResponse wraps a provider session
type LaunchResponse struct {
	Session *games.LaunchSession `json:"session"`
}
