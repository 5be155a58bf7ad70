package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "./config.yaml"
	defaultDotenvPath = ".env"
)

// Load builds the configuration. Environment variables win over the YAML
// file, which wins over env-default tags.
//
// A dotenv file (DOTENV_PATH, default .env) is merged into the environment
// first without overriding variables that are already set. The YAML file is
// CONFIG_PATH, default ./config.yaml; the default may be absent, an explicit
// path may not.
func Load() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := read(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func read(cfg *Config) error {
	path, explicit := lookupPath("CONFIG_PATH", defaultConfigPath)

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}

func loadDotenv() error {
	path, explicit := lookupPath("DOTENV_PATH", defaultDotenvPath)

	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("config: dotenv %s: %w", path, err)
}

// lookupPath returns the path named by env, or def when it is unset.
func lookupPath(env, def string) (string, bool) {
	if p := os.Getenv(env); p != "" {
		return p, true
	}
	return def, false
}
