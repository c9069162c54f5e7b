// Package config provides configuration management for the ledger engine.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
)

// Store backend names accepted in LEDGER_STORE.
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
	StoreSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	// StoreBackend selects the document store: memory, bolt or sqlite.
	StoreBackend string

	// DBPath is the database file path for the bolt and sqlite backends.
	DBPath string

	// LabelsPath is an optional YAML file overriding display labels.
	LabelsPath string

	// DefaultBranchName names the branch created when none exist.
	DefaultBranchName string

	Debug bool
}

// Load loads configuration from environment variables. It automatically
// loads a .env file from the current directory if available; a custom .env
// path may be given.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Ignore error if no .env in the current directory.
		_ = godotenv.Load()
	}

	cfg := &Config{
		StoreBackend:      getEnvOrDefault("LEDGER_STORE", StoreBolt),
		DBPath:            getEnvOrDefault("LEDGER_DB_PATH", "./data/ledger.db"),
		LabelsPath:        os.Getenv("LEDGER_LABELS_PATH"),
		DefaultBranchName: getEnvOrDefault("LEDGER_DEFAULT_BRANCH_NAME", "Main Branch"),
		Debug:             os.Getenv("DEBUG") == "true",
	}

	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreBolt, StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("LEDGER_DB_PATH is required for the %s store", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown LEDGER_STORE %q (want %s, %s or %s)",
			c.StoreBackend, StoreMemory, StoreBolt, StoreSQLite)
	}
	return nil
}

// OpenStore opens the configured document store backend.
func (c *Config) OpenStore() (docstore.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.StoreBackend {
	case StoreMemory:
		return docstore.NewMemory(), nil
	case StoreSQLite:
		return docstore.OpenSQLite(c.DBPath)
	default:
		return docstore.OpenBolt(c.DBPath)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
