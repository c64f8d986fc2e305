package commands

import (
	"log/slog"
	"os"

	"github.com/leapstack-labs/viewgen/internal/cli/config"
	"github.com/leapstack-labs/viewgen/internal/cli/output"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *scaffold.Store
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a template store and renderer.
// The store layers the configured templates directory, if any, over the
// embedded templates.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	store, err := createStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	cmdCtx.Store = store

	return cmdCtx, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a store.
// Useful for commands that never read templates.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		Template:     os.Getenv("VIEWGEN_TEMPLATE"),
		TemplatesDir: os.Getenv("VIEWGEN_TEMPLATES_DIR"),
		Verbose:      os.Getenv("VIEWGEN_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("VIEWGEN_OUTPUT", config.DefaultOutput),
		Preview: config.PreviewConfig{
			Port:            config.DefaultPreviewPort,
			ShutdownTimeout: config.DefaultShutdownTimeout,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createStore(cfg *config.Config, logger *slog.Logger) (*scaffold.Store, error) {
	if err := cfg.ValidateDirectories(); err != nil {
		return nil, err
	}

	opts := []scaffold.StoreOption{scaffold.WithLogger(logger)}
	if cfg.TemplatesDir != "" {
		opts = append(opts, scaffold.WithOverlay(cfg.TemplatesDir))
	}

	return scaffold.NewStore(opts...)
}
