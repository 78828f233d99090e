package main

import (
	"fmt"

	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/config"
	"codeberg.org/gamevault/server/internal/games"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/notifications"
)

// creates and configures all service clients
func InitializeServices(cfg *config.Config) (*Services, error) {
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	if !cfg.GamesConfigured() {
		logger.Warn("games provider not configured, game routes will fail with E5001")
	}

	gamesClient := games.NewClient(cfg.GamesProviderURL, cfg.GamesProviderAPIKey, cfg.GamesProviderTimeout)

	var notifier notifications.Notifier = notifications.NopNotifier{}
	if cfg.TelegramConfigured() {
		notifier = notifications.NewTelegramNotifier(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.AdminChatIDs)
	} else {
		logger.Warn("telegram not configured, admin notifications disabled")
	}

	return &Services{
		Tokens:   tokens,
		Games:    gamesClient,
		Notifier: notifications.New(notifier),
	}, nil
}
