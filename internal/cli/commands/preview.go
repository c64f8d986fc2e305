package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"github.com/leapstack-labs/viewgen/internal/ui"
	"github.com/spf13/cobra"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	Port  int
	Watch bool
	Open  bool
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse the example views in a local web page",
		Long: `Start a local web server that renders every example view with its data.

Views with a master table let you select a row; the detail table below it
then shows the rows linked to the selection. The selection is kept in a
session cookie for the lifetime of the server.

With --watch, edits to view files in the templates directory reload the
open pages.`,
		Example: `  # Start on the default port
  viewgen preview

  # Start on a custom port and open a browser
  viewgen preview --port 3000 --open

  # Reload pages when local templates change
  viewgen preview --templates-dir ./templates --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload pages when templates change")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the preview in a browser")

	return cmd
}

func runPreview(cmd *cobra.Command, opts *PreviewOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	previewCfg := cmdCtx.Cfg.Preview

	// CLI flags override config file
	port := previewCfg.Port
	if cmd.Flags().Changed("port") {
		port = opts.Port
	}
	watch := previewCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}
	secret := previewCfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString()
	}
	if watch && cmdCtx.Store.Overlay() == "" {
		r.Warning("--watch has no effect without a templates directory")
	}

	server := ui.NewServer(ui.Config{
		Store:           cmdCtx.Store,
		Port:            port,
		Watch:           watch,
		SessionSecret:   secret,
		ShutdownTimeout: previewCfg.ShutdownTimeout,
		Logger:          cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if opts.Open {
		go openBrowser(url)
	}

	r.Println("Starting preview server on " + url)
	r.Println("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
