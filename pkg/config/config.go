// Package config loads the optional debugger settings file. Every field has
// a hardcoded default, so a missing file at the default locations is not an
// error: it falls back to those defaults the same way the layout loader falls
// back to its built-in layout when none is supplied. An explicitly named file
// that does not exist is an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the debugger settings normally supplied by .gubed.yml.
type Config struct {
	// ExtensionsDir is scanned for native extension shared libraries.
	ExtensionsDir string `yaml:"extensions_dir"`

	// BreakpointsFile, if set, is loaded at startup to pre-populate the
	// breakpoint set (one "module:line" entry per line).
	BreakpointsFile string `yaml:"breakpoints_file"`

	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of text, json.
	LogFormat string `yaml:"log_format"`

	// MetricsAddr is the loopback address to serve /metrics on. Empty
	// disables the metrics endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// OTLPEndpoint, if set, switches tracing from the stdout exporter to
	// OTLP/gRPC at this address.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when no settings file is found.
func Default() *Config {
	return &Config{
		ExtensionsDir:   "./extensions",
		BreakpointsFile: "",
		LogLevel:        "info",
		LogFormat:       "text",
		MetricsAddr:     "",
		OTLPEndpoint:    "",
	}
}

// Load reads path when it is non-empty; otherwise it reads the first of
// ./.gubed.yml and $HOME/.gubed/config.yml that exists. Found values are
// merged over Default. A missing file at the default locations is not an
// error; a missing explicit path is, and so is a malformed file.
func Load(path string) (*Config, error) {
	cfg := Default()

	candidates := []string{}
	if path != "" {
		candidates = append(candidates, path)
	} else {
		candidates = append(candidates, ".gubed.yml")
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".gubed", "config.yml"))
		}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read config %s: %w", candidate, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", candidate, err)
		}
		return cfg, nil
	}

	if path != "" {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	return cfg, nil
}
