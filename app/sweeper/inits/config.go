package inits

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"school-site-console/app/sweeper/config"
)

func Config() (*config.Config, error) {
	_ = godotenv.Load()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Storage.Endpoint = strings.TrimSuffix(cfg.Storage.Endpoint, "/")

	return &cfg, nil
}
