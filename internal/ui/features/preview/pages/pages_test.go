package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/viewgen/internal/example"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func customersData(selected string) ViewData {
	view := example.CustomersView()
	data := ViewData{
		Descriptor: scaffold.Descriptor{ID: "customers", Filename: "customers.view.tsx"},
		View:       view,
		Source:     []byte("<Table title={`Users for ${c.name}`} />"),
	}
	sel, _ := example.NewSelection(view)
	if selected != "" && sel.Select(selected) == nil {
		data.Selected = selected
	}
	data.Tables = []example.Table{sel.Master()}
	data.Detail, data.HasDetail = sel.DetailTable()
	return data
}

func TestPage(t *testing.T) {
	tests := []struct {
		name    string
		live    bool
		want    []string
		notWant []string
	}{
		{
			name: "static",
			want: []string{
				"<!doctype html>",
				"<title>A &amp; B - viewgen</title>",
				`href="/static/preview.css"`,
				`<main class="stack"><p>body</p></main>`,
			},
			notWant: []string{"data-init"},
		},
		{
			name: "live",
			live: true,
			want: []string{`<body data-init="@get('/reload')">`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, Page("A & B", tt.live, templ.Raw("<p>body</p>")))
			for _, s := range tt.want {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestTemplateIndex(t *testing.T) {
	got := render(t, TemplateIndex([]scaffold.Descriptor{
		{ID: "customers", Category: "master-detail", Filename: "customers.view.tsx", Description: "Customers <and> users"},
	}))

	assert.Contains(t, got, `<a href="/views/customers">customers</a>`)
	assert.Contains(t, got, "<td>master-detail</td>")
	assert.Contains(t, got, "<code>customers.view.tsx</code>")
	assert.Contains(t, got, "Customers &lt;and&gt; users")
}

func TestDetailPanel(t *testing.T) {
	t.Run("placeholder until selected", func(t *testing.T) {
		got := render(t, DetailPanel(customersData("")))
		assert.Equal(t, `<div id="detail"><p class="muted">Select a row to see its details.</p></div>`, got)
	})

	t.Run("selected customer's users only", func(t *testing.T) {
		got := render(t, DetailPanel(customersData("1")))
		assert.Contains(t, got, "<h2>Users for Globex</h2>")
		assert.Contains(t, got, "Homer Simpson")
		assert.NotContains(t, got, "Wile E. Coyote")
	})
}

func TestMasterTable_MarksSelection(t *testing.T) {
	got := render(t, MasterTable(customersData("0")))

	assert.Contains(t, got, `<div id="table-customers">`)
	assert.Contains(t, got, `data-row="0" aria-selected="true"`)
	assert.Contains(t, got, `data-row="1" aria-selected="false"`)
	assert.Contains(t, got, `data-on:click="@post(&#39;/views/customers/select/1&#39;)"`)
}

func TestViewContent_SourceFollowsExample(t *testing.T) {
	got := render(t, ViewContent(customersData("")))

	i := bytes.Index([]byte(got), []byte(`<pre class="source">`))
	require.Greater(t, i, 0)
	assert.NotContains(t, got[:i], "Users for")
	assert.Contains(t, got[i:], "&lt;Table title={`Users for ${c.name}`} /&gt;")
}

func TestTable_Empty(t *testing.T) {
	got := render(t, Table(example.Table{
		Title:   "Nothing",
		Columns: []example.Column{{Label: "A", Accessor: "a"}, {Label: "B", Accessor: "b"}},
	}))

	assert.Equal(t, `<div><h2>Nothing</h2><table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td class="muted" colspan="2">No rows</td></tr></tbody></table></div>`, got)
}
