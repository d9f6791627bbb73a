// config.go - Configuration management for the blackout daemon
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"blackout/internal/transfer"
)

// Config represents the daemon configuration
type Config struct {
	// Transfer settings
	Transfer transfer.Config `json:"transfer"`

	// Demo settings
	DemoAmount     uint64 `json:"demo_amount"`
	DemoRecipients int    `json:"demo_recipients"`

	// File paths
	StorePath string `json:"store_path"`
	KeyDir    string `json:"key_dir"`

	// Membership gate
	EnableMembership bool `json:"enable_membership"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
	Pretty   bool   `json:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Transfer:         transfer.DefaultConfig(),
		DemoAmount:       1_000_000_000,
		DemoRecipients:   2,
		StorePath:        "transfers.db",
		KeyDir:           "keys",
		EnableMembership: false,
		LogLevel:         "info",
		LogFile:          "",
		Pretty:           true,
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return &config, nil
	}

	// Create default config and save it
	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Transfer.Validate(); err != nil {
		return err
	}
	if c.DemoAmount == 0 {
		return fmt.Errorf("demo_amount must be positive")
	}
	if c.DemoRecipients < 1 || c.DemoRecipients > transfer.MaxRecipients {
		return fmt.Errorf("demo_recipients must be in [1,%d]", transfer.MaxRecipients)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path must be set")
	}
	return nil
}
