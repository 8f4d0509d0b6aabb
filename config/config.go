// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds connection parameters for the capacity store.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Config is the full service configuration. Defaults cover a local
// deployment; an optional config.yaml overlays them and environment
// variables win over both (the DB credentials in particular are expected
// to arrive via the environment).
type Config struct {
	Database      DatabaseConfig `yaml:"database"`
	DataDir       string         `yaml:"data_dir"`
	SourceBaseURL string         `yaml:"source_base_url"`

	HTTPTimeoutStr string `yaml:"http_timeout"`
	HTTPTimeout    time.Duration
}

// DefaultSourceBaseURL is the Energy Transfer operationally-available
// capacity endpoint for the TW pipeline.
const DefaultSourceBaseURL = "https://twtransfer.energytransfer.com/ipost/capacity/operationally-available"

// Load builds the configuration from defaults, an optional YAML file, and
// the environment, in that order of precedence (lowest first).
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			DBName:   "tec_data",
		},
		DataDir:       "data",
		SourceBaseURL: DefaultSourceBaseURL,
		HTTPTimeout:   30 * time.Second,
	}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
		}
		if cfg.HTTPTimeoutStr != "" {
			cfg.HTTPTimeout, err = time.ParseDuration(cfg.HTTPTimeoutStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse http_timeout: %w", err)
			}
		}
	}

	cfg.Database.Host = envOr("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = envOr("DB_PORT", cfg.Database.Port)
	cfg.Database.User = envOr("DB_USER", cfg.Database.User)
	cfg.Database.Password = envOr("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = envOr("DB_NAME", cfg.Database.DBName)
	cfg.DataDir = envOr("DATA_DIR", cfg.DataDir)
	cfg.SourceBaseURL = envOr("SOURCE_BASE_URL", cfg.SourceBaseURL)

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTTP_TIMEOUT %q: %w", raw, err)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
