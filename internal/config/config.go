package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ledgerport-dev/ledgerport/internal/mapper"
)

// FileName is the default configuration file name.
const FileName = "ledgerport.yaml"

// Config represents the top-level ledgerport.yaml configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Budget BudgetConfig `yaml:"budget"`
	Import ImportConfig `yaml:"import"`
}

// ServerConfig identifies the budget server.
type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// BudgetConfig selects the budget to import into.
type BudgetConfig struct {
	ID       string `yaml:"id"`
	Password string `yaml:"password,omitempty"` // passphrase for encrypted budgets
	Currency string `yaml:"currency"`
}

// ImportConfig holds per-import defaults; flags override these.
type ImportConfig struct {
	File            string            `yaml:"file,omitempty"`
	DateLayout      string            `yaml:"date_layout"`
	MarkCleared     bool              `yaml:"mark_cleared"`
	ForceDuplicates bool              `yaml:"force_duplicates"`
	Repairs         map[string]string `yaml:"repairs,omitempty"` // extra mojibake fixes
}

// Load reads a ledgerport.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a starter Config for a new setup.
func Default(serverURL, budgetID string) *Config {
	return &Config{
		Server: ServerConfig{
			URL: serverURL,
		},
		Budget: BudgetConfig{
			ID:       budgetID,
			Currency: "EUR",
		},
		Import: ImportConfig{
			DateLayout: mapper.DefaultDateLayout,
		},
	}
}

// Validate checks the values every run needs. Missing values are fatal
// before the pipeline starts.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if c.Server.Token == "" {
		return errors.New("server.token is required")
	}
	if c.Budget.ID == "" {
		return errors.New("budget.id is required")
	}
	if c.Import.File == "" {
		return errors.New("import.file is required")
	}
	return nil
}
