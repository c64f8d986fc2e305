package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/viewgen/internal/cli/output"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/spf13/cobra"
)

// DefaultTemplateOption is used when no template is given and no terminal
// is available for the picker.
const DefaultTemplateOption = "default"

// InitOptions holds options for the init command.
type InitOptions struct {
	Template     string
	Project      bool
	KeepTSConfig bool
}

// initOutput is the JSON shape of init: the view result plus any project
// files written with --project.
type initOutput struct {
	*scaffold.Result
	Project []*scaffold.ProjectFile `json:"project,omitempty"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [destination]",
		Short: "Write an example view into the current project",
		Long: `Write one of the example view templates to a file.

The template is chosen by --template, then the "template" config key, then an
interactive picker when stdin is a terminal, and finally "default".
Accepted values are template ids, categories and aliases (see 'viewgen templates').

The destination defaults to the template's filename in the current directory.
A directory destination receives the template's filename inside it. An
existing file is overwritten; missing parent directories are not created.

With --project, the view's directory is also prepared for compiling views: the
view compiler options are merged into tsconfig.json (created if missing) and a
package.json is created unless one exists there or in a parent directory.
Template options win over existing tsconfig.json values unless
--keep-tsconfig is set.`,
		Example: `  # Write default.view.tsx here
  viewgen init

  # Write the master-detail example
  viewgen init -t master-detail

  # Write into a directory, or to an explicit file
  viewgen init views/ -t customers
  viewgen init views/team.view.tsx -t users

  # Also write tsconfig.json and package.json next to the view
  viewgen init views/ --project`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := "."
			if len(args) > 0 {
				dest = args[0]
			}
			return runInit(cmd, opts, dest)
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "Template id, category or alias")
	cmd.Flags().BoolVar(&opts.Project, "project", false, "Also write tsconfig.json and package.json next to the view")
	cmd.Flags().BoolVar(&opts.KeepTSConfig, "keep-tsconfig", false, "Keep existing tsconfig.json values when merging (with --project)")

	_ = cmd.RegisterFlagCompletionFunc("template", completeTemplateOptions)

	return cmd
}

func runInit(cmd *cobra.Command, opts *InitOptions, dest string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	store := cmdCtx.Store

	option, err := resolveTemplateOption(cmd, cmdCtx, opts)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("resolved template option", "option", option, "dest", dest)

	res, err := scaffold.Init(cmd.Context(), store, option, dest)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("wrote view", "template", res.TemplateID, "path", res.Path, "bytes", res.Bytes)

	var project []*scaffold.ProjectFile
	if opts.Project {
		strategy := scaffold.PreferTemplate
		if opts.KeepTSConfig {
			strategy = scaffold.PreferExisting
		}
		project, err = scaffold.InitProject(cmd.Context(), filepath.Dir(res.Path), strategy)
		if err != nil {
			return err
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(initOutput{Result: res, Project: project})
	}

	detail := ""
	if res.Replaced {
		detail = "replaced existing file"
	}
	r.StatusLine(res.Path, "success", detail)
	for _, pf := range project {
		r.StatusLine(pf.Path, projectStatus(pf.Status), pf.Status)
		for _, c := range pf.Changes {
			old := c.Old
			if old == "" {
				old = "unset"
			}
			r.Println(fmt.Sprintf("      %s: %s -> %s", c.Key, old, c.New))
		}
	}
	r.Println("")
	r.Success(fmt.Sprintf("Created %s from the %q template", filepath.Base(res.Path), res.TemplateID))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Open " + res.Path + " and replace the example data")
	r.Println("  2. Run 'viewgen check' to validate view sources")
	r.Println("  3. Run 'viewgen preview' to browse the examples")

	return nil
}

// projectStatus maps a project file status onto a status line kind.
func projectStatus(status string) string {
	switch status {
	case scaffold.StatusCreated, scaffold.StatusUpdated:
		return "success"
	default:
		return "skipped"
	}
}

// resolveTemplateOption picks the template option: flag > config > picker > default.
func resolveTemplateOption(cmd *cobra.Command, cmdCtx *CommandContext, opts *InitOptions) (string, error) {
	if cmd.Flags().Changed("template") {
		return opts.Template, nil
	}
	if strings.TrimSpace(cmdCtx.Cfg.Template) != "" {
		return cmdCtx.Cfg.Template, nil
	}
	if cmdCtx.Renderer.EffectiveMode() == output.ModeText && isInteractive(cmd.InOrStdin()) {
		return pickTemplate(cmd.InOrStdin(), cmd.ErrOrStderr(), cmdCtx.Store.List())
	}
	return DefaultTemplateOption, nil
}

// completeTemplateOptions offers template ids, categories and aliases.
func completeTemplateOptions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	store, err := scaffold.NewStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, d := range store.List() {
		add(d.ID)
		add(d.Category)
		for _, a := range d.Aliases {
			add(a)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
