package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/leapstack-labs/viewgen/internal/example"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/leapstack-labs/viewgen/internal/ui/features/preview"
	"github.com/leapstack-labs/viewgen/internal/ui/features/preview/pages"
)

// generateTemplateDocs writes a catalog page plus one page per template.
// Pages are converted from the preview server's own HTML, so the docs show
// exactly what 'viewgen preview' renders.
func generateTemplateDocs(outDir string) error {
	log.Printf("Generating template docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	store, err := scaffold.NewStore()
	if err != nil {
		return err
	}
	conv := newConverter()

	if err := generateTemplateIndex(store, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, d := range store.List() {
		if err := generateTemplatePage(conv, store, d, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", d.ID, err)
		}
		log.Printf("  Generated %s.md", d.ID)
	}
	return nil
}

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

func generateTemplateIndex(store *scaffold.Store, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter("Templates", "Example views shipped with viewgen")
	w.GeneratedMarker()

	w.Header(1, "Templates")
	w.Paragraph("Write any of these with `viewgen init -t <option>`, where the option is an id, a category or an alias.")

	headers := []string{"Template", "Category", "Aliases", "File", "Description"}
	var rows [][]string
	for _, d := range store.List() {
		aliases := make([]string, len(d.Aliases))
		for i, a := range d.Aliases {
			aliases[i] = InlineCode(a)
		}
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/templates/%s)", InlineCode(d.ID), d.ID),
			InlineCode(d.Category),
			strings.Join(aliases, ", "),
			InlineCode(d.Filename),
			cleanDescription(d.Description),
		})
	}
	w.Table(headers, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

func generateTemplatePage(conv *converter.Converter, store *scaffold.Store, d scaffold.Descriptor, outDir string) error {
	view, ok := example.ForTemplate(d.ID)
	if !ok {
		return fmt.Errorf("no example data for template %s", d.ID)
	}

	w := NewMarkdownWriter()
	w.Frontmatter(view.Title, d.Description)
	w.GeneratedMarker()

	w.Header(2, "Usage")
	w.CodeBlock("bash", fmt.Sprintf("viewgen init -t %s", d.Category))

	// Master-detail views are documented with their first master row
	// selected, so the filtered detail table appears too.
	selected := ""
	if view.Link != nil {
		if master, ok := view.Table(view.Link.Master); ok && len(master.Rows) > 0 {
			selected, _ = master.Rows[0].Get(view.Link.PrimaryKey)
		}
	}

	data, err := preview.BuildViewData(store, d.ID, view, selected)
	if err != nil {
		return err
	}
	var html bytes.Buffer
	if err := pages.ViewContent(data).Render(context.Background(), &html); err != nil {
		return err
	}
	md, err := conv.ConvertString(html.String())
	if err != nil {
		return fmt.Errorf("convert %s: %w", d.ID, err)
	}
	w.Raw(md)

	return os.WriteFile(filepath.Join(outDir, d.ID+".md"), w.Bytes(), 0600)
}
