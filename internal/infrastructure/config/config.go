package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/storage"
	"github.com/felixgeelhaar/sshscp/pkg/keys"
	"gopkg.in/yaml.v3"
)

// Config stores workspace defaults applied to new hosts and remote calls.
// SSHSCP_LOG_LEVEL and SSHSCP_LOG_FORMAT override the file.
type Config struct {
	UserName       string        `yaml:"user_name"`
	KeyBits        int           `yaml:"key_bits"`
	Region         string        `yaml:"region"`
	Profile        string        `yaml:"profile,omitempty"`
	IPMode         string        `yaml:"ip_mode"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	RetryAttempts  int           `yaml:"retry_attempts"`
	LogLevel       string        `yaml:"log_level" env:"SSHSCP_LOG_LEVEL"`
	LogFormat      string        `yaml:"log_format" env:"SSHSCP_LOG_FORMAT"`
}

func Default() *Config {
	return &Config{
		UserName:       "ubuntu",
		KeyBits:        keys.DefaultBits,
		Region:         "us-west-2",
		IPMode:         "ephemeral",
		CommandTimeout: 5 * time.Minute,
		RetryAttempts:  3,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Validate rejects values that would make remote calls misbehave.
func (c *Config) Validate() error {
	if c.UserName == "" {
		return fmt.Errorf("user_name cannot be empty")
	}
	if c.KeyBits < 0 {
		return fmt.Errorf("key_bits must not be negative")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1")
	}
	return nil
}

// Load reads config.yaml under root, falling back to defaults for a
// missing file or unset fields, then applies environment overrides.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
