// Package config loads runtime configuration from an optional YAML file with
// environment overrides. The API credential is resolved from the environment
// only; a missing credential is a startup-fatal condition surfaced before
// any session begins.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// Provider selects the generation backend: "openai" or "anthropic".
	Provider string `yaml:"provider"`

	// Model is the provider-specific model identifier.
	Model string `yaml:"model"`

	// Temperature for generation calls. 0 keeps routing deterministic.
	Temperature float64 `yaml:"temperature"`

	// CorpusDir holds the JSON document corpus.
	CorpusDir string `yaml:"corpus_dir"`

	// DataDir holds sessions, checkpoints and audit logs.
	DataDir string `yaml:"data_dir"`

	// SummaryBudget caps the running conversation summary in bytes.
	SummaryBudget int `yaml:"summary_budget"`

	// ActiveDocumentCap bounds the active document set.
	ActiveDocumentCap int `yaml:"active_document_cap"`

	// TurnTimeout bounds one turn end to end.
	TurnTimeout time.Duration `yaml:"turn_timeout"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json or text
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Provider:          "openai",
		Temperature:       0.0,
		CorpusDir:         "corpus",
		DataDir:           ".docpilot",
		SummaryBudget:     2000,
		ActiveDocumentCap: 5,
		TurnTimeout:       120 * time.Second,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and applies DOCPILOT_* environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCPILOT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("DOCPILOT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DOCPILOT_CORPUS_DIR"); v != "" {
		cfg.CorpusDir = v
	}
	if v := os.Getenv("DOCPILOT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DOCPILOT_SUMMARY_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SummaryBudget = n
		}
	}
	if v := os.Getenv("DOCPILOT_ACTIVE_DOCUMENT_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ActiveDocumentCap = n
		}
	}
	if v := os.Getenv("DOCPILOT_TURN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TurnTimeout = d
		}
	}
}

func (c Config) validate() error {
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q (want openai or anthropic)", c.Provider)
	}
	if c.SummaryBudget <= 0 {
		return fmt.Errorf("summary_budget must be positive, got %d", c.SummaryBudget)
	}
	if c.ActiveDocumentCap <= 0 {
		return fmt.Errorf("active_document_cap must be positive, got %d", c.ActiveDocumentCap)
	}
	return nil
}

// CredentialEnvVar returns the environment variable the provider's API key
// is read from.
func (c Config) CredentialEnvVar() string {
	if c.Provider == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// Credential resolves the provider API key from the environment. Absence is
// a startup-fatal condition, not a per-turn error.
func (c Config) Credential() (string, error) {
	name := c.CredentialEnvVar()
	key := os.Getenv(name)
	if key == "" {
		return "", fmt.Errorf("missing credential: environment variable %s is not set", name)
	}
	return key, nil
}
