// Package main is the entry point for the storyforge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/storyforge/storyforge/cmd"
	"github.com/storyforge/storyforge/internal/logging"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err == nil {
		// Re-apply logging settings now that .env values are visible.
		logLevel := os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			logLevel = "info"
		}
		logging.SetupLogger(os.Stdout, logging.LogLevel(logLevel), os.Getenv("LOG_FORMAT") == "json")
	}

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
