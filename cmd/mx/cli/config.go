// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Config holds optional CLI defaults, authored on disk as a JSONC file
// (JSON extended with comments and trailing commas). Everything in it
// can be overridden by flags; a missing config file is not an error.
type Config struct {
	// Homeserver is the default homeserver URL used when --homeserver
	// is not given.
	Homeserver string `json:"homeserver"`

	// DeviceName is sent as the initial device display name on login,
	// so the session is recognizable in the account's device list.
	DeviceName string `json:"device_name"`
}

// ConfigFilePath returns the path to the CLI config file. Checks the
// MX_CONFIG_FILE environment variable first, then falls back to
// ~/.config/mx/config.jsonc.
func ConfigFilePath() string {
	if envPath := os.Getenv("MX_CONFIG_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("/tmp", "mx-config.jsonc")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "mx", "config.jsonc")
}

// ParseConfig strips JSONC comments and trailing commas from data,
// then unmarshals the result into a Config.
func ParseConfig(data []byte) (*Config, error) {
	stripped := jsonc.ToJSON(data)

	var config Config
	if err := json.Unmarshal(stripped, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &config, nil
}

// LoadConfig reads the config file from the well-known path. A missing
// file yields an empty config, not an error.
func LoadConfig() (*Config, error) {
	path := ConfigFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}
