package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	apperrors "codeberg.org/gamevault/server/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"ENVIRONMENT":                "development",
	"PORT":                       "8080",
	"JWT_TTL":                    "168h",
	"RATE_LIMIT":                 "100-M",
	"RATE_LIMIT_AUTH":            "10-M",
	"GAMES_PROVIDER_TIMEOUT":     "5s",
	"TELEGRAM_API_URL":           "https://api.telegram.org",
	"WALLET_CURRENCY":            "USD",
	"WITHDRAWAL_ALERT_THRESHOLD": 100000,
}

// loads configuration from environment variables (and a .env file when present)
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return Load(viper.New())
}

// reads and validates configuration from v; a failure names the offending key
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := bindEnv(v, cfg); err != nil {
		return nil, fmt.Errorf("bind environment: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigurationError("", apperrors.WithCause(err))
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.WalletCurrency = strings.ToUpper(cfg.WalletCurrency)
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.TelegramAdminChatIDs = splitList(cfg.TelegramAdminChatIDs)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, configError(cfg, err)
	}

	if cfg.IsProduction() && cfg.DatabaseURL == "" {
		return nil, apperrors.NewConfigurationError("DATABASE_URL",
			apperrors.WithCause(errors.New("DATABASE_URL is required in production")))
	}

	ids, err := parseChatIDs(cfg.TelegramAdminChatIDs)
	if err != nil {
		return nil, apperrors.NewConfigurationError("TELEGRAM_ADMIN_CHAT_IDS", apperrors.WithCause(err))
	}

	cfg.AdminChatIDs = ids

	return cfg, nil
}

// reads only DATABASE_URL; the migrate command needs nothing else
func LoadDatabaseURL(v *viper.Viper) (string, error) {
	if err := v.BindEnv("DATABASE_URL"); err != nil {
		return "", fmt.Errorf("bind environment: %w", err)
	}

	url := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if url == "" {
		return "", apperrors.NewConfigurationError("DATABASE_URL")
	}

	return url, nil
}

// binds every tagged field to its environment variable
func bindEnv(v *viper.Viper, cfg any) error {
	t := reflect.TypeOf(cfg).Elem()

	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		if err := v.BindEnv(tag); err != nil {
			return err
		}
	}

	return nil
}

// names the environment variable behind the first failing field
func configError(cfg any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewConfigurationError("", apperrors.WithCause(err))
	}

	key := verrs[0].StructField()
	if field, ok := reflect.TypeOf(cfg).Elem().FieldByName(key); ok {
		key = field.Tag.Get("mapstructure")
	}

	return apperrors.NewConfigurationError(key, apperrors.WithCause(err))
}

// flattens comma-separated entries and drops blanks
func splitList(values []string) []string {
	var out []string

	for _, value := range values {
		for part := range strings.SplitSeq(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func parseChatIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))

	for _, value := range values {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q is not an integer", value)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
