// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/viewgen/internal/cli/config"
	"github.com/leapstack-labs/viewgen/internal/cli/output"
	logtest "github.com/leapstack-labs/viewgen/internal/testutil"
	"github.com/spf13/cobra"
)

// SetupTestProject creates a temporary project with a viewgen.yaml and an
// empty templates directory, and makes it the working directory for the
// rest of the test. Extra config lines are added to the config file; a
// templates_dir line among them replaces the default one.
func SetupTestProject(t *testing.T, configLines ...string) string {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "templates"), 0750); err != nil {
		t.Fatalf("failed to create templates directory: %v", err)
	}

	cfg := ""
	hasTemplatesDir := false
	for _, line := range configLines {
		cfg += line + "\n"
		hasTemplatesDir = hasTemplatesDir || strings.HasPrefix(line, "templates_dir:")
	}
	if !hasTemplatesDir {
		cfg = "templates_dir: templates\n" + cfg
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "viewgen.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to create viewgen.yaml: %v", err)
	}

	t.Chdir(tmpDir)
	return tmpDir
}

// WriteTemplate writes an override for a view file into the project's
// templates directory.
func WriteTemplate(t *testing.T, projectDir, name, content string) {
	t.Helper()
	path := filepath.Join(projectDir, "templates", name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// CommandResult holds the captured output of a command run.
type CommandResult struct {
	Out    string
	ErrOut string
}

// RunCommand executes cmd with args the way the root command would: config
// is loaded from the working directory and flags, and a test logger is put
// in the context. Stdin is empty so interactive prompts are skipped.
func RunCommand(t *testing.T, cmd *cobra.Command, args ...string) (CommandResult, error) {
	t.Helper()

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		if _, err := config.LoadConfig("", c.Flags()); err != nil {
			return err
		}
		ctx := context.WithValue(c.Context(), config.LoggerKey(), logtest.NewTestLogger(t))
		c.SetContext(ctx)
		return nil
	}

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return CommandResult{Out: out.String(), ErrOut: errOut.String()}, err
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
