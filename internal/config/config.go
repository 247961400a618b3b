package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration when --config is unset.
const DefaultPath = "chemlab.yaml"

// Config holds all chemlab configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Server    ServerConfig    `yaml:"server"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Chemistry ChemistryConfig `yaml:"chemistry"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	PubChem   PubChemConfig   `yaml:"pubchem"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// ChemistryConfig configures the reaction table.
type ChemistryConfig struct {
	// ReactionsPath replaces the built-in table when set.
	ReactionsPath string `yaml:"reactions_path"`
}

// CatalogConfig configures the chemical catalog store.
type CatalogConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

// PubChemConfig configures the compound lookup client.
type PubChemConfig struct {
	BaseURL     string `yaml:"base_url"`
	Timeout     string `yaml:"timeout"`
	MinInterval string `yaml:"min_interval"`
}

// ValidCatalogDrivers lists the supported catalog backends.
var ValidCatalogDrivers = []string{"sqlite", "postgres"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "chemlab",
		Version: "0.3.0",

		Server: ServerConfig{
			Addr:         ":5000",
			ReadTimeout:  "15s",
			WriteTimeout: "60s",
		},

		Narrative: NarrativeConfig{
			Provider:        ProviderGemini,
			Model:           "gemini-2.0-flash",
			Timeout:         "30s",
			Temperature:     0.7,
			MaxOutputTokens: 600,
		},

		Catalog: CatalogConfig{
			Driver: "sqlite",
			DSN:    "data/chemicals.db",
		},

		PubChem: PubChemConfig{
			BaseURL:     "https://pubchem.ncbi.nlm.nih.gov/rest/pug",
			Timeout:     "10s",
			MinInterval: "200ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over the generic Google key.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Narrative.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Narrative.APIKey = key
	}

	if addr := os.Getenv("CHEMLAB_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if dsn := os.Getenv("CHEMLAB_DB"); dsn != "" {
		c.Catalog.DSN = dsn
	}
	if driver := os.Getenv("CHEMLAB_DB_DRIVER"); driver != "" {
		c.Catalog.Driver = driver
	}
	if url := os.Getenv("PUBCHEM_URL"); url != "" {
		c.PubChem.BaseURL = url
	}
	if level := os.Getenv("CHEMLAB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

// GetNarrativeTimeout returns the narrative call timeout as a duration.
func (c *Config) GetNarrativeTimeout() time.Duration {
	return parseDuration(c.Narrative.Timeout, 30*time.Second)
}

// GetPubChemTimeout returns the PubChem request timeout as a duration.
func (c *Config) GetPubChemTimeout() time.Duration {
	return parseDuration(c.PubChem.Timeout, 10*time.Second)
}

// GetPubChemMinInterval returns the minimum spacing between PubChem requests.
func (c *Config) GetPubChemMinInterval() time.Duration {
	return parseDuration(c.PubChem.MinInterval, 200*time.Millisecond)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Narrative.validate(); err != nil {
		return err
	}

	validDriver := false
	for _, d := range ValidCatalogDrivers {
		if c.Catalog.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid catalog driver: %s (valid: %v)", c.Catalog.Driver, ValidCatalogDrivers)
	}
	if c.Catalog.DSN == "" {
		return fmt.Errorf("catalog dsn not configured (set catalog.dsn or CHEMLAB_DB)")
	}

	if !IsValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}
