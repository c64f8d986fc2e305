package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/viewgen/internal/cli"
	"github.com/leapstack-labs/viewgen/internal/cli/config"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandGroup orders commands on the index page.
type commandGroup struct {
	Title    string
	Commands []string
}

var commandGroups = []commandGroup{
	{Title: "Writing views", Commands: []string{"init"}},
	{Title: "Inspecting templates", Commands: []string{"templates", "show", "check"}},
	{Title: "Previewing", Commands: []string{"preview"}},
	{Title: "Setup", Commands: []string{"doctor", "version", "completion"}},
}

// configKey documents one viewgen.yaml key. Commands lists the commands
// whose behaviour it changes; Flag is the flag that overrides it, if any.
type configKey struct {
	Key         string
	Flag        string
	Commands    []string
	Description string
}

var configKeys = []configKey{
	{Key: "template", Commands: []string{"init"}, Description: "Template used by init when no --template is given"},
	{Key: "templates_dir", Flag: "templates-dir", Description: "Directory whose view files replace the built-in templates"},
	{Key: "output", Flag: "output", Description: "Output format (auto, text, markdown, json)"},
	{Key: "verbose", Flag: "verbose", Description: "Debug logging on stderr"},
	{Key: "preview.port", Flag: "port", Commands: []string{"preview", "doctor"}, Description: "Preview server port; 0 picks a free one"},
	{Key: "preview.watch", Flag: "watch", Commands: []string{"preview", "doctor"}, Description: "Reload preview pages when templates change"},
	{Key: "preview.session_secret", Commands: []string{"preview"}, Description: "Cookie signing secret; random per run when empty"},
	{Key: "preview.shutdown_timeout", Commands: []string{"preview"}, Description: "Grace period for open connections on shutdown"},
	{Key: "check.templates", Commands: []string{"check"}, Description: "Templates checked when none are named; comma-separated in the environment"},
}

// templateCommands take template options as arguments or flags.
var templateCommands = []string{"init", "show", "check"}

// envName is the environment variable for a config key.
func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// generateCLIDocs writes an index page plus one page per viewgen command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	store, err := scaffold.NewStore()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	if err := generateCLIIndex(rootCmd, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range documentedCommands(rootCmd) {
		if err := generateCommandPage(cmd, store, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}
	return nil
}

func documentedCommands(rootCmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func generateCLIIndex(rootCmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for viewgen")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("viewgen writes example views into a project, and lets you list, print, check and preview them first.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/viewgen/cmd/viewgen@latest")

	commands := map[string]*cobra.Command{}
	for _, cmd := range documentedCommands(rootCmd) {
		commands[cmd.Name()] = cmd
	}
	listed := map[string]bool{}
	for _, group := range commandGroups {
		var rows [][]string
		for _, name := range group.Commands {
			cmd, ok := commands[name]
			if !ok {
				continue
			}
			listed[name] = true
			rows = append(rows, commandRow(cmd))
		}
		if len(rows) == 0 {
			continue
		}
		w.Header(2, group.Title)
		w.Table([]string{"Command", "Description"}, rows)
	}

	// Commands added without a group still get listed.
	var rest [][]string
	for _, cmd := range documentedCommands(rootCmd) {
		if !listed[cmd.Name()] {
			rest = append(rest, commandRow(cmd))
		}
	}
	if len(rest) > 0 {
		w.Header(2, "Other Commands")
		w.Table([]string{"Command", "Description"}, rest)
	}

	w.Header(2, "Global Options")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	w.Header(2, "Configuration")
	w.Paragraph("Settings come from viewgen.yaml (searched upward from the working directory), then " +
		InlineCode(config.EnvPrefix+"*") + " environment variables, then flags. Nested keys use a double underscore in the environment.")
	var rows [][]string
	for _, k := range configKeys {
		flag := ""
		if k.Flag != "" {
			flag = InlineCode("--" + k.Flag)
		}
		rows = append(rows, []string{InlineCode(k.Key), InlineCode(envName(k.Key)), flag, k.Description})
	}
	w.Table([]string{"Key", "Environment", "Flag", "Description"}, rows)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including a failed " + InlineCode("check") + " (details on stderr)"},
	})

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

func commandRow(cmd *cobra.Command) []string {
	link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
	return []string{link, cleanDescription(cmd.Short)}
}

func generateCommandPage(cmd *cobra.Command, store *scaffold.Store, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	useLine := cmd.UseLine()
	if !strings.HasPrefix(useLine, "viewgen") {
		useLine = "viewgen " + useLine
	}
	w.CodeBlock("bash", useLine)

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		var aliases []string
		for _, alias := range cmd.Aliases {
			aliases = append(aliases, InlineCode(alias))
		}
		w.BulletList(aliases)
	}

	if slices.Contains(templateCommands, cmd.Name()) {
		writeTemplateOptions(w, store)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}

	if keys := commandConfigKeys(cmd.Name()); len(keys) > 0 {
		w.Header(2, "Configuration")
		var rows [][]string
		for _, k := range keys {
			rows = append(rows, []string{InlineCode(k.Key), InlineCode(envName(k.Key)), k.Description})
		}
		w.Table([]string{"Key", "Environment", "Description"}, rows)
	}

	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return os.WriteFile(filepath.Join(outDir, cmd.Name()+".md"), w.Bytes(), 0600)
}

// writeTemplateOptions lists every value a template argument or flag
// accepts, grouped by the template it selects.
func writeTemplateOptions(w *MarkdownWriter, store *scaffold.Store) {
	w.Header(2, "Template Options")
	w.Paragraph("Options are matched case-insensitively after trimming spaces. Each row lists the values that select one template.")

	var rows [][]string
	for _, d := range store.List() {
		accepted := []string{InlineCode(d.ID), InlineCode(d.Category)}
		for _, a := range d.Aliases {
			accepted = append(accepted, InlineCode(a))
		}
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/templates/%s)", InlineCode(d.ID), d.ID),
			strings.Join(accepted, ", "),
			InlineCode(d.Filename),
		})
	}
	w.Table([]string{"Template", "Accepted values", "Default file"}, rows)
}

func commandConfigKeys(name string) []configKey {
	var out []configKey
	for _, k := range configKeys {
		if slices.Contains(k.Commands, name) {
			out = append(out, k)
		}
	}
	return out
}

func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}

		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option += " (" + InlineCode("-"+f.Shorthand) + ")"
		}

		def := f.DefValue
		switch {
		case def == "", def == "[]", def == "false":
			def = ""
		case f.Value.Type() != "bool":
			def = InlineCode(def)
		}

		rows = append(rows, []string{option, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Description"}, rows)
}

// cleanExample strips the indentation shared by every non-blank line.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(example)
	}

	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
