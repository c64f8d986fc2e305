package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/viewgen/internal/cli/output"
	"github.com/leapstack-labs/viewgen/internal/example"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when at least one template fails a check.
var ErrCheckFailed = errors.New("check failed")

// CheckOutput is the JSON output for the check command.
type CheckOutput struct {
	Results []CheckResult `json:"results"`
	Failed  int           `json:"failed"`
}

// CheckResult is the outcome of checking one template.
type CheckResult struct {
	Template    string                `json:"template"`
	Source      string                `json:"source"`
	Status      string                `json:"status"` // "pass", "fail"
	Diagnostics []scaffold.Diagnostic `json:"diagnostics,omitempty"`
	DataError   string                `json:"data_error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [template...]",
		Short: "Validate template sources and example data",
		Long: `Check that every template (or the named ones) is valid TSX and that its
example data is consistent: each column accessor and hidden column names a
field present in every row, and master-detail links point at real keys.

With no arguments the templates listed under check.templates in viewgen.yaml
are checked, or all of them when that list is empty.
Exits non-zero if any template fails.`,
		Example: `  viewgen check
  viewgen check master-detail
  viewgen check --templates-dir ./views --output json`,
		ValidArgsFunction: completeTemplateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	store := cmdCtx.Store

	options := args
	if len(options) == 0 {
		options = cmdCtx.Cfg.Check.Templates
	}
	ids, err := resolveTemplateIDs(store, options)
	if err != nil {
		return err
	}

	out := &CheckOutput{Results: make([]CheckResult, 0, len(ids))}
	for _, id := range ids {
		res, err := checkTemplate(store, id)
		if err != nil {
			return err
		}
		if res.Status != "pass" {
			out.Failed++
		}
		cmdCtx.Logger.Debug("checked template", "template", id, "status", res.Status)
		out.Results = append(out.Results, res)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderCheckMarkdown(r, out)
	default:
		renderCheckText(r, out)
	}

	if out.Failed > 0 {
		return fmt.Errorf("%w: %d of %d templates", ErrCheckFailed, out.Failed, len(out.Results))
	}
	return nil
}

// resolveTemplateIDs maps options to template ids, keeping order and
// dropping duplicates. No options means every template.
func resolveTemplateIDs(store *scaffold.Store, options []string) ([]string, error) {
	if len(options) == 0 {
		return store.IDs(), nil
	}
	ids := make([]string, 0, len(options))
	seen := map[string]bool{}
	for _, opt := range options {
		id, err := store.Select(opt)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func checkTemplate(store *scaffold.Store, id string) (CheckResult, error) {
	res := CheckResult{Template: id, Source: "built-in", Status: "pass"}
	if store.Overridden(id) {
		res.Source = store.Overlay()
	}

	diags, err := store.Check(id)
	if err != nil {
		return res, err
	}
	res.Diagnostics = diags

	if view, ok := example.ForTemplate(id); ok {
		if err := view.Validate(); err != nil {
			res.DataError = err.Error()
		}
	}

	if len(res.Diagnostics) > 0 || res.DataError != "" {
		res.Status = "fail"
	}
	return res, nil
}

func renderCheckText(r *output.Renderer, out *CheckOutput) {
	styles := r.Styles()

	r.Header(1, "Template Check")
	for _, res := range out.Results {
		status := "success"
		if res.Status != "pass" {
			status = "failed"
		}
		r.StatusLine(res.Template, status, res.Source)
		for _, d := range res.Diagnostics {
			r.Println(styles.Muted.Render("      - " + d.String()))
		}
		if res.DataError != "" {
			r.Println(styles.Muted.Render("      - data: " + res.DataError))
		}
	}
	r.Println("")

	if out.Failed == 0 {
		r.Success(fmt.Sprintf("%d templates passed", len(out.Results)))
		return
	}
	r.Println(styles.Error.Render(fmt.Sprintf("%d of %d templates failed", out.Failed, len(out.Results))))
}

func renderCheckMarkdown(r *output.Renderer, out *CheckOutput) {
	r.Println(output.FormatHeader(1, "Template Check"))
	r.Println("")
	for _, res := range out.Results {
		r.Println(output.FormatHeader(2, res.Template))
		r.Println("")
		r.Println(output.FormatKeyValue("Status", res.Status))
		r.Println(output.FormatKeyValue("Source", res.Source))
		for _, d := range res.Diagnostics {
			r.Println(output.FormatKeyValue("Diagnostic", d.String()))
		}
		if res.DataError != "" {
			r.Println(output.FormatKeyValue("Data", res.DataError))
		}
		r.Println("")
	}
	r.Printf("%d of %d templates failed\n", out.Failed, len(out.Results))
}
