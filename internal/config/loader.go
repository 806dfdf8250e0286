package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// ConfigFileName is the optional project-local config file.
	ConfigFileName = ".venvtask.yaml"

	// envPrefix namespaces venvtask environment variables.
	envPrefix = "VENVTASK_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load loads configuration for the given project root.
//
// Precedence (highest to lowest):
//  1. Environment variables (VENVTASK_INTERPRETER, VENVTASK_LOG_LEVEL, ...)
//  2. <projectRoot>/.venvtask.yaml, if present
//  3. Built-in defaults
//
// Environment variables map to config keys by stripping the prefix and
// lowercasing; the LOG_ group maps into the log section:
//
//	VENVTASK_VENV_DIR   -> venv_dir
//	VENVTASK_LOG_LEVEL  -> log.level
//	VENVTASK_LOG_FORMAT -> log.format
func Load(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	configPath := filepath.Join(projectRoot, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate via the file descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// transformEnvKey maps VENVTASK_* variables to config keys. Keys are flat
// except the log section, which uses a LOG_ group.
func transformEnvKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// applyDefaults fills fields the file/env layers left empty. Unmarshal
// starts from NewDefaultConfig, but an explicit empty string in the file
// would otherwise slip through to Validate with a confusing message.
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()
	if cfg.Interpreter == "" {
		cfg.Interpreter = defaults.Interpreter
	}
	if cfg.VenvDir == "" {
		cfg.VenvDir = defaults.VenvDir
	}
	if cfg.Requirements == "" {
		cfg.Requirements = defaults.Requirements
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}
