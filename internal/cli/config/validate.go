package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %v)", c.OutputFormat, OutputFormats)
	}
	// Port 0 asks the OS for a free port.
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("invalid preview port %d", c.Preview.Port)
	}
	if c.Preview.ShutdownTimeout < 0 {
		return fmt.Errorf("preview shutdown_timeout must not be negative, got %s", c.Preview.ShutdownTimeout)
	}

	// Directory existence is checked by commands that read templates,
	// so help and version work anywhere.
	return nil
}

// ValidateDirectories checks if the configured templates directory exists.
func (c *Config) ValidateDirectories() error {
	if c.TemplatesDir == "" {
		return nil
	}
	info, err := os.Stat(c.TemplatesDir)
	if os.IsNotExist(err) {
		return errors.WithHint(
			errors.Newf("templates directory does not exist: %s", c.TemplatesDir),
			"Create the directory or use --templates-dir to specify a different path")
	}
	if err != nil {
		return fmt.Errorf("templates directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("templates directory is not a directory: %s", c.TemplatesDir)
	}
	return nil
}
