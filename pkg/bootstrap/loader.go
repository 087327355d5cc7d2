package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const logPrefix = "bootstrap:loader"

// LoadConfig loads bootstrap config from file paths or environment.
// It tries paths in order: first any paths passed in, then the
// GATEWAY_BOOTSTRAP_FILE env var, then defaults. Files ending in .yaml or
// .yml parse as YAML, everything else as JSON.
func LoadConfig(paths ...string) (*Config, error) {
	all := make([]string, 0, len(paths)+5)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv("GATEWAY_BOOTSTRAP_FILE"); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/bootstrap.yaml", "config/bootstrap.json", "bootstrap.yaml", "bootstrap.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		cfg, err := parseConfig(p, data)
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse bootstrap file %s: %v", logPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded bootstrap config from %s", logPrefix, p))
		return cfg, nil
	}

	slog.Info(fmt.Sprintf("%s - Using default bootstrap config", logPrefix))
	return DefaultConfig(), nil
}

func parseConfig(path string, data []byte) (*Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// DefaultConfig returns the embedded fallback bootstrap configuration:
// English messages for every engine error code and no deny rules.
func DefaultConfig() *Config {
	return &Config{
		Name:        "action-gateway-bootstrap",
		Version:     "1.0.0",
		Description: "Default action gateway bootstrap configuration",
		DefaultLang: "en",
		Messages: map[string]map[string]string{
			"en": {
				"no-registry":             "Action not found.",
				"no-response-sending":     "The action produced no response.",
				"client-version-required": "A client version header is required.",
				"need-upgrade-client":     "Please upgrade your client (minimum {{min}}, current {{now}}).",
				"internal-server-error":   "Something went wrong. Please try again later.",
			},
		},
	}
}
