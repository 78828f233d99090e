package main

import (
	"fmt"
	"os"

	"codeberg.org/gamevault/server/internal/config"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	flags, err := config.ParseMigrateFlags(os.Args[1:])
	if err != nil {
		fmt.Println("Usage: migrate [-direction up|down] [-steps N]")
		fmt.Println("  -direction up    - apply pending migrations (default)")
		fmt.Println("  -direction down  - roll back, requires -steps")
		fmt.Println("  -steps N         - number of migrations to apply (0 applies all pending)")
		os.Exit(2)
	}

	// not an error - production environments may not have .env file
	_ = godotenv.Load() //nolint:errcheck

	databaseURL, err := config.LoadDatabaseURL(viper.New())
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Info("running migrations", "direction", flags.Direction, "steps", flags.Steps)

	if err := storage.Migrate(databaseURL, flags.Direction, flags.Steps); err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	logger.Sync()
}
