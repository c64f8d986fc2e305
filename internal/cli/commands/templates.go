package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/viewgen/internal/cli/output"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/spf13/cobra"
)

// templateInfo is the JSON shape of one listed template.
type templateInfo struct {
	scaffold.Descriptor
	Overridden bool `json:"overridden"`
}

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"ls"},
		Short:   "List available view templates",
		Long: `List the view templates viewgen can write, in manifest order.

Any id, category or alias shown here is accepted by 'viewgen init -t'.
Templates served from --templates-dir instead of the built-in copy are marked.`,
		Example: `  viewgen templates
  viewgen ls --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTemplates(cmd)
		},
	}

	return cmd
}

func runTemplates(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	store := cmdCtx.Store

	switch r.EffectiveMode() {
	case output.ModeJSON:
		infos := make([]templateInfo, 0, len(store.List()))
		for _, d := range store.List() {
			infos = append(infos, templateInfo{Descriptor: d, Overridden: store.Overridden(d.ID)})
		}
		return r.JSON(infos)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Templates (%d total)", len(store.List()))))
		r.Println("")
		for _, d := range store.List() {
			r.Println(output.FormatHeader(2, d.ID))
			r.Println("")
			r.Println(output.FormatKeyValue("Category", d.Category))
			if len(d.Aliases) > 0 {
				r.Println(output.FormatKeyValue("Aliases", strings.Join(d.Aliases, ", ")))
			}
			r.Println(output.FormatKeyValue("File", d.Filename))
			r.Println(output.FormatKeyValue("Description", d.Description))
			if store.Overridden(d.ID) {
				r.Println(output.FormatKeyValue("Source", store.Overlay()))
			}
			r.Println("")
		}
	default:
		r.Header(1, fmt.Sprintf("Templates (%d total)", len(store.List())))
		rows := make([][]string, 0, len(store.List()))
		for _, d := range store.List() {
			id := d.ID
			if store.Overridden(d.ID) {
				id += " *"
			}
			rows = append(rows, []string{id, output.TitleCase(d.Category), strings.Join(d.Aliases, ", "), d.Filename, d.Description})
		}
		r.Table([]string{"ID", "Category", "Aliases", "File", "Description"}, rows)
		if store.Overlay() != "" {
			r.Println(r.Styles().Muted.Render("* served from " + store.Overlay()))
		}
	}

	return nil
}
