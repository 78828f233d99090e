package config

import (
	"flag"
	"fmt"
)

// parses CLI flags for the migrate command
func ParseMigrateFlags(args []string) (Flags, error) {
	defaults := DefaultMigrateFlags()

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	direction := fs.String("direction", defaults.Direction, "migration direction: up or down")
	steps := fs.Int("steps", defaults.Steps, "number of migrations to apply (0 applies all pending)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	if *direction != "up" && *direction != "down" {
		return Flags{}, fmt.Errorf("invalid direction %q", *direction)
	}

	if *steps < 0 {
		return Flags{}, fmt.Errorf("steps must not be negative")
	}

	// rolling everything back must be asked for explicitly
	if *direction == "down" && *steps == 0 {
		return Flags{}, fmt.Errorf("down requires -steps")
	}

	return Flags{Direction: *direction, Steps: *steps}, nil
}

// returns default flags for migrations
func DefaultMigrateFlags() Flags {
	return Flags{Direction: "up"}
}
