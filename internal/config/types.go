package config

import "time"

// Config is the process configuration, read once at startup.
// Field tags name the environment variable each value comes from.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT" validate:"oneof=development test staging production"`
	Port        string `mapstructure:"PORT" validate:"required,numeric"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL" validate:"gt=0"`

	// ulule limiter formatted rates, e.g. "100-M"
	RateLimit     string `mapstructure:"RATE_LIMIT" validate:"required"`
	RateLimitAuth string `mapstructure:"RATE_LIMIT_AUTH" validate:"required"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	GamesProviderURL     string        `mapstructure:"GAMES_PROVIDER_URL" validate:"omitempty,url"`
	GamesProviderAPIKey  string        `mapstructure:"GAMES_PROVIDER_API_KEY"`
	GamesProviderTimeout time.Duration `mapstructure:"GAMES_PROVIDER_TIMEOUT" validate:"gt=0"`

	TelegramBotToken     string   `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatIDs []string `mapstructure:"TELEGRAM_ADMIN_CHAT_IDS"`
	TelegramAPIURL       string   `mapstructure:"TELEGRAM_API_URL" validate:"required,url"`

	WalletCurrency           string `mapstructure:"WALLET_CURRENCY" validate:"len=3,alpha"`
	WithdrawalAlertThreshold int64  `mapstructure:"WITHDRAWAL_ALERT_THRESHOLD" validate:"gte=0"`

	LogLevel string `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	LogFile  string `mapstructure:"LOG_FILE"`

	// parsed from TelegramAdminChatIDs
	AdminChatIDs []int64 `mapstructure:"-"`
}

// reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// reports whether admin notifications can be delivered
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && len(c.AdminChatIDs) > 0
}

// reports whether a games provider is configured
func (c *Config) GamesConfigured() bool {
	return c.GamesProviderURL != ""
}

// flags for the migrate command
type Flags struct {
	Direction string
	Steps     int
}
