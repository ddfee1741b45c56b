package inits

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"school-site-console/app/server/config"
)

func Config() (*config.Config, error) {
	// Local development convenience, absence is not an error
	_ = godotenv.Load()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	// Keep URL building simple later on
	cfg.Storage.Endpoint = strings.TrimSuffix(cfg.Storage.Endpoint, "/")

	return &cfg, nil
}
