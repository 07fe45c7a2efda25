// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-12
// Last Modified: 2026-10-17

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the process-level settings read from the environment.
type Env struct {
	// GitHubToken authenticates host API calls.
	GitHubToken string `env:"GITHUB_TOKEN"`
	// WebhookSecret validates X-Hub-Signature-256 on incoming deliveries.
	WebhookSecret string `env:"RULEBOT_WEBHOOK_SECRET"`
	// DryRun forces dry-run mode regardless of the config file.
	DryRun bool `env:"RULEBOT_DRY_RUN"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"RULEBOT_LOG_LEVEL" envDefault:"info"`
	// Addr is the listen address of the webhook server.
	Addr string `env:"RULEBOT_ADDR" envDefault:":8080"`
	// APIRate is the maximum number of GitHub API calls per second.
	APIRate float64 `env:"RULEBOT_API_RATE" envDefault:"10"`
}

// LoadEnv loads the given .env files (missing files are ignored) and parses the environment.
// Variables already present in the process environment win over .env values.
func LoadEnv(files ...string) (*Env, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &e, nil
}
