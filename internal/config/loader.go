package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// LoadFile loads a config file (HCL or JSON), applies defaults, and validates.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".hcl":
		return LoadHCL(data, path)
	case ".json":
		return LoadJSON(data)
	default:
		// Try HCL first, fall back to JSON.
		cfg, err := LoadHCL(data, path)
		if err != nil {
			return LoadJSON(data)
		}
		return cfg, nil
	}
}

// LoadHCL loads config from HCL bytes.
func LoadHCL(data []byte, filename string) (*Config, error) {
	// hclsimple dispatches on the file extension.
	if !strings.HasSuffix(filename, ".hcl") {
		filename += ".hcl"
	}
	var cfg Config
	if err := hclsimple.Decode(filename, data, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return finish(&cfg)
}

// LoadJSON loads config from JSON bytes.
func LoadJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
