package preview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/viewgen/internal/testutil"
	"github.com/leapstack-labs/viewgen/internal/ui/features"
	"github.com/leapstack-labs/viewgen/internal/ui/features/preview/pages"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T, live bool) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	h := NewHandlers(fixture.Store, fixture.SessionStore, live, testutil.NewTestLogger(t))
	return h, fixture
}

func getView(h *Handlers, id string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/views/"+id, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req = features.RequestWithPathParams(req, "id", id)
	rec := httptest.NewRecorder()
	h.ViewPage(rec, req)
	return rec
}

func postSelect(h *Handlers, id, row string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, pages.SelectURL(id, row), nil)
	req = features.RequestWithPathParams(req, "id", id, "row", row)
	rec := httptest.NewRecorder()
	h.SelectRow(rec, req)
	return rec
}

// exampleSection returns the rendered example view of a page body, without
// the template source listed after it. The source mentions every table title
// and dataset value, so absence checks must not look at it.
func exampleSection(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, `<pre class="source">`)
	require.GreaterOrEqual(t, i, 0, "page has no source listing")
	return body[:i]
}

// =============================================================================
// Page Tests - Full HTML responses
// =============================================================================

func TestIndexPage(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.IndexPage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Templates - viewgen</title>",
		`href="/views/default"`,
		`href="/views/customers"`,
		"master-detail",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "data-init", "non-live pages do not subscribe to reloads")
}

func TestIndexPage_Live(t *testing.T) {
	h, _ := setupTestHandlers(t, true)

	rec := httptest.NewRecorder()
	h.IndexPage(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, rec.Body.String(), `data-init="@get('/reload')"`)
}

func TestViewPage_Default(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	rec := getView(h, "default")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Elements</h1>")
	assert.Contains(t, body, "<h2>Elements Table</h2>")
	assert.Contains(t, body, "<td>Hydrogen</td><td>1.008</td>")
	assert.Contains(t, body, "default.view.tsx")
	// Source is HTML-escaped.
	assert.Contains(t, body, "&lt;Title&gt;Elements&lt;/Title&gt;")
}

func TestViewPage_NoDetailUntilSelected(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	rec := getView(h, "customers")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := exampleSection(t, rec.Body.String())
	assert.Contains(t, body, `id="table-customers"`)
	assert.Contains(t, body, `<div id="detail"><p class="muted">Select a row to see its details.</p></div>`)
	assert.Contains(t, body, "Acme Corporation")
	assert.NotContains(t, body, "Users for")
	assert.NotContains(t, body, "wile@acme.example")
	assert.NotContains(t, body, `aria-selected="true"`)
	assert.Contains(t, body, `data-on:click="@post(&#39;/views/customers/select/1&#39;)"`)

	// The source still lists the detail table the selection will reveal.
	assert.Contains(t, rec.Body.String(), "Users for ${selectedCustomer.name}")
}

func TestViewPage_Unknown(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	rec := getView(h, "kanban")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewPage_ServesOverlaySource(t *testing.T) {
	h, fixture := setupTestHandlers(t, false)
	fixture.WriteOverlay(t, "default.view.tsx", "export default () => null; // local copy\n")

	rec := getView(h, "default")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "// local copy")
	assert.Contains(t, rec.Body.String(), "Served from the templates directory")
}

// =============================================================================
// SelectRow Tests - SSE patches
// =============================================================================

func TestSelectRow_PatchesDetail(t *testing.T) {
	tests := []struct {
		row       string
		wantTitle string
		want      []string
		notWant   []string
	}{
		{
			row:       "0",
			wantTitle: "Users for Acme Corporation",
			want:      []string{"Wile E. Coyote", "Road Runner", "Marvin Martian"},
			notWant:   []string{"Hank Scorpio", "Customer ID"},
		},
		{
			row:       "1",
			wantTitle: "Users for Globex",
			want:      []string{"Hank Scorpio", "Homer Simpson", "Frank Grimes", "Lenny Leonard"},
			notWant:   []string{"Wile E. Coyote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.row, func(t *testing.T) {
			h, _ := setupTestHandlers(t, false)

			rec := postSelect(h, "customers", tt.row)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
			body := rec.Body.String()
			assert.Equal(t, 2, strings.Count(body, "event: datastar-patch-elements"))
			assert.Contains(t, body, tt.wantTitle)
			assert.Contains(t, body, `data-row="`+tt.row+`" aria-selected="true"`)
			for _, s := range tt.want {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestSelectRow_PersistsInSession(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	rec := postSelect(h, "customers", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	page := getView(h, "customers", cookies...)
	body := exampleSection(t, page.Body.String())
	assert.Contains(t, body, "Users for Globex")
	assert.Contains(t, body, `data-row="1" aria-selected="true"`)
	assert.NotContains(t, body, "wile@acme.example")
}

func TestSelectRow_ForeignCookieIsIgnored(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	rec := getView(h, "customers", &http.Cookie{Name: SessionName, Value: "garbage"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, exampleSection(t, rec.Body.String()), "Users for")
}

func TestSelectRow_Rejected(t *testing.T) {
	tests := []struct {
		name string
		id   string
		row  string
	}{
		{name: "unknown row", id: "customers", row: "42"},
		{name: "unknown view", id: "kanban", row: "0"},
		{name: "view without link", id: "default", row: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t, false)

			rec := postSelect(h, tt.id, tt.row)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.NotContains(t, rec.Header().Get("Content-Type"), "text/event-stream")
			assert.Empty(t, rec.Result().Cookies(), "no selection is stored")
		})
	}
}
