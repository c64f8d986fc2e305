// Package config provides configuration management for the viewgen CLI.
//
// Values are layered from defaults, a viewgen.yaml file, VIEWGEN_*
// environment variables and explicitly set command-line flags, in that
// order of increasing precedence.
package config

import "time"

// PreviewConfig holds configuration for the preview server.
type PreviewConfig struct {
	Port            int           `koanf:"port"`
	Watch           bool          `koanf:"watch"`
	SessionSecret   string        `koanf:"session_secret"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CheckConfig holds configuration for the check command.
type CheckConfig struct {
	// Templates checked when none are named on the command line.
	// Empty means every template.
	Templates []string `koanf:"templates"`
}

// Config holds all CLI configuration options.
type Config struct {
	Template     string        `koanf:"template"`
	TemplatesDir string        `koanf:"templates_dir"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Preview      PreviewConfig `koanf:"preview"`
	Check        CheckConfig   `koanf:"check"`

	// ProjectRoot is the directory holding the config file, or the
	// working directory when there is none. Not read from any source.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPreviewPort     = 8765
	DefaultShutdownTimeout = 5 * time.Second
	EnvPrefix              = "VIEWGEN_"
)

// configFileNames are searched in order.
var configFileNames = []string{"viewgen.yaml", "viewgen.yml"}
