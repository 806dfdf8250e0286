// Package config provides configuration loading for venvtask.
package config

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/venvtask/internal/logging"
)

// Config holds all venvtask settings. Everything has a working default;
// a config file is never required.
type Config struct {
	// Interpreter is the base interpreter used to create the environment.
	// It must be discoverable on the ambient PATH.
	Interpreter string `koanf:"interpreter"`

	// VenvDir is the environment directory, relative to the project root.
	VenvDir string `koanf:"venv_dir"`

	// Requirements is the dependency manifest, relative to the project root.
	// A missing manifest is not an error; the install step is skipped.
	Requirements string `koanf:"requirements"`

	// Log configures structured logging.
	Log logging.Config `koanf:"log"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Interpreter:  "python3",
		VenvDir:      ".venv",
		Requirements: "requirements.txt",
		Log:          *logging.NewDefaultConfig(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interpreter == "" {
		return fmt.Errorf("interpreter cannot be empty")
	}
	if c.VenvDir == "" {
		return fmt.Errorf("venv_dir cannot be empty")
	}
	if strings.HasPrefix(c.VenvDir, "/") {
		return fmt.Errorf("venv_dir must be relative to the project root, got %q", c.VenvDir)
	}
	if c.Requirements == "" {
		return fmt.Errorf("requirements cannot be empty")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}
