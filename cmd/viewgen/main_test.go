// Package main provides tests for the viewgen CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/viewgen/internal/cli"
	"github.com/leapstack-labs/viewgen/internal/cli/config"
)

// runCLI runs the root command in a fresh project directory.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "viewgen") {
		t.Errorf("version output should contain 'viewgen', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"init", "templates", "show", "check", "preview", "doctor", "version", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestInitCommand(t *testing.T) {
	output, err := runCLI(t, "init", "-t", "master-detail", "-o", "markdown")
	if err != nil {
		t.Fatalf("init command error = %v", err)
	}
	if !strings.Contains(output, "customers.view.tsx") {
		t.Errorf("init output should name the written file, got: %s", output)
	}

	data, err := os.ReadFile("customers.view.tsx")
	if err != nil {
		t.Fatalf("expected customers.view.tsx to be written: %v", err)
	}
	if !strings.Contains(string(data), "<Title>Customers</Title>") {
		t.Errorf("unexpected file content: %s", data)
	}
}

func TestTemplatesDirFlag(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "default.view.tsx"), []byte("// ours\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"show", "default", "--templates-dir", ".", "-o", "text"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("show command error = %v", err)
	}
	if buf.String() != "// ours\n" {
		t.Errorf("show should print the templates-dir copy, got: %q", buf.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Errorf("completion command error = %v", err)
	}
	if !strings.Contains(output, "viewgen") {
		t.Errorf("completion script should mention viewgen, got: %s", output)
	}
}

func TestUnsupportedTemplate(t *testing.T) {
	_, err := runCLI(t, "init", "-t", "kanban")
	if err == nil {
		t.Fatal("expected an error for an unsupported template option")
	}
	if !strings.Contains(err.Error(), "kanban") {
		t.Errorf("error should name the option, got: %v", err)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := runCLI(t, "templates", "-o", "yaml")
	if err == nil {
		t.Fatal("expected an error for an invalid output format")
	}
}
