package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig drives the storefront CLI. Values come from defaults, then the
// YAML profile, then STOREFRONT_* environment variables.
type ClientConfig struct {
	APIURL         string        `yaml:"api_url" env:"STOREFRONT_API_URL"`
	DataDir        string        `yaml:"data_dir" env:"STOREFRONT_DATA_DIR"`
	ReadyTimeout   time.Duration `yaml:"ready_timeout" env:"STOREFRONT_READY_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"STOREFRONT_REQUEST_TIMEOUT"`
	CatalogMaxAge  time.Duration `yaml:"catalog_max_age" env:"STOREFRONT_CATALOG_MAX_AGE"`
	FuzzyMatch     bool          `yaml:"fuzzy_match" env:"STOREFRONT_FUZZY_MATCH"`
}

func DefaultClientConfig() ClientConfig {
	dataDir := ".storefront"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".storefront")
	}
	return ClientConfig{
		APIURL:         "http://localhost:4000",
		DataDir:        dataDir,
		ReadyTimeout:   3 * time.Second,
		RequestTimeout: 15 * time.Second,
	}
}

// DefaultProfilePath is config.yaml inside the default data dir.
func DefaultProfilePath() string {
	return filepath.Join(DefaultClientConfig().DataDir, "config.yaml")
}

// LoadClient reads the profile at path (a missing file is not an error) and
// applies environment overrides.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return ClientConfig{}, fmt.Errorf("read profile %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return ClientConfig{}, fmt.Errorf("parse profile %s: %w", path, err)
			}
		}
	}

	if err := parseEnv(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.DataDir == "" {
		return ClientConfig{}, errors.New("data_dir is required")
	}
	if cfg.ReadyTimeout < 0 {
		cfg.ReadyTimeout = 0
	}
	return cfg, nil
}

// LocalStorePath is the SQLite file holding the session and offline orders.
func (c ClientConfig) LocalStorePath() string {
	return filepath.Join(c.DataDir, "storefront.db")
}
