package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ObjectStoreConfig holds the S3-compatible bucket used to back up keys.
// It is read from the environment only; credentials never go in config.yaml.
type ObjectStoreConfig struct {
	Endpoint  string `env:"SSHSCP_S3_ENDPOINT"`
	AccessKey string `env:"SSHSCP_S3_ACCESS_KEY"`
	SecretKey string `env:"SSHSCP_S3_SECRET_KEY"`
	Bucket    string `env:"SSHSCP_S3_BUCKET"`
	Prefix    string `env:"SSHSCP_S3_PREFIX" envDefault:"keys/"`
	UseSSL    bool   `env:"SSHSCP_S3_USE_SSL" envDefault:"true"`
}

// Enabled reports whether an endpoint was configured at all.
func (c ObjectStoreConfig) Enabled() bool {
	return c.Endpoint != ""
}

func LoadObjectStoreConfig() (ObjectStoreConfig, error) {
	var cfg ObjectStoreConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
