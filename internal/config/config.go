// Package config loads the runner configuration. Precedence is CLI flags
// over environment variables over the JSON config file over defaults; flags
// are applied by the cmd layer after Load returns.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/iyuangang/sql-batch-runner/internal/security"
)

const envPrefix = "SQL_BATCH_RUNNER_"

// ExecutionConfig controls batch execution behavior.
type ExecutionConfig struct {
	// StopOnError selects the transaction policy: true runs each file's
	// statements in one transaction aborted on the first failure, false
	// isolates every statement in its own transaction and continues.
	StopOnError    bool `json:"stop_on_error"`
	TimeoutSeconds int  `json:"timeout_seconds"`
}

// Config is the full runner configuration.
type Config struct {
	DatabaseURL string          `json:"database_url"`
	Encrypted   bool            `json:"encrypted"`
	Security    security.Config `json:"security"`
	Execution   ExecutionConfig `json:"execution"`
	LogLevel    string          `json:"log_level"`
	LogFile     string          `json:"log_file"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Security: security.DefaultConfig(),
		Execution: ExecutionConfig{
			StopOnError:    true,
			TimeoutSeconds: 30,
		},
		LogLevel: "info",
		LogFile:  "sql-batch-runner.log",
	}
}

// Load reads the JSON config at path, fills defaults, applies environment
// overrides, and decrypts the database URL when it was stored encrypted.
// An empty path yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.setDefaults()
	cfg.applyEnv()

	if cfg.Encrypted && cfg.DatabaseURL != "" {
		crypto, err := NewCrypto()
		if err != nil {
			return nil, fmt.Errorf("init crypto: %w", err)
		}
		url, err := crypto.Decrypt(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("decrypt database url: %w", err)
		}
		cfg.DatabaseURL = url
		cfg.Encrypted = false
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path with the database URL encrypted at rest.
func (c *Config) Save(path string) error {
	out := *c
	if !out.Encrypted && out.DatabaseURL != "" {
		crypto, err := NewCrypto()
		if err != nil {
			return fmt.Errorf("init crypto: %w", err)
		}
		encrypted, err := crypto.Encrypt(out.DatabaseURL)
		if err != nil {
			return fmt.Errorf("encrypt database url: %w", err)
		}
		out.DatabaseURL = encrypted
		out.Encrypted = true
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	def := security.DefaultConfig()
	if c.Security.Level == "" {
		c.Security.Level = def.Level
	}
	if c.Security.MaxFileSizeMB <= 0 {
		c.Security.MaxFileSizeMB = def.MaxFileSizeMB
	}
	if c.Security.MaxStatementsPerFile <= 0 {
		c.Security.MaxStatementsPerFile = def.MaxStatementsPerFile
	}
	if c.Security.MaxStatementLength <= 0 {
		c.Security.MaxStatementLength = def.MaxStatementLength
	}
	if len(c.Security.AllowedExtensions) == 0 {
		c.Security.AllowedExtensions = def.AllowedExtensions
	}
	if c.Execution.TimeoutSeconds <= 0 {
		c.Execution.TimeoutSeconds = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = "sql-batch-runner.log"
	}
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(envPrefix + "DATABASE_URL"); ok {
		c.DatabaseURL = v
		c.Encrypted = false
	}
	if v, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(envPrefix + "LOG_FILE"); ok {
		c.LogFile = v
	}
	if v, ok := os.LookupEnv(envPrefix + "SECURITY_LEVEL"); ok {
		if level, err := security.ParseLevel(v); err == nil {
			c.Security.Level = level
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "STOP_ON_ERROR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Execution.StopOnError = b
		}
	}
}

func (c *Config) validate() error {
	if _, err := security.ParseLevel(string(c.Security.Level)); err != nil {
		return err
	}
	return nil
}
