package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Skufu/refractplan/internal/outcome"
)

type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	GinMode         string `envconfig:"GIN_MODE" default:"release"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	EnableDB        bool   `envconfig:"ENABLE_DB" default:"false"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	AblationFormula string `envconfig:"ABLATION_FORMULA" default:"magnitude"`
	BatchWorkers    int    `envconfig:"BATCH_WORKERS" default:"4"`
	MaxBodyBytes    int64  `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	MaxUploadBytes  int64  `envconfig:"MAX_UPLOAD_BYTES" default:"8388608"`
	StaticDir       string `envconfig:"STATIC_DIR"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if _, err := outcome.ParseAblationFormula(cfg.AblationFormula); err != nil {
		return nil, fmt.Errorf("ABLATION_FORMULA: %w", err)
	}
	if cfg.BatchWorkers < 1 {
		return nil, fmt.Errorf("BATCH_WORKERS must be at least 1, got %d", cfg.BatchWorkers)
	}
	if cfg.MaxBodyBytes <= 0 || cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES and MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

// Formula returns the parsed ablation formula. Load has already rejected
// unknown values.
func (c *Config) Formula() outcome.AblationFormula {
	f, err := outcome.ParseAblationFormula(c.AblationFormula)
	if err != nil {
		return outcome.DefaultFormula
	}
	return f
}
