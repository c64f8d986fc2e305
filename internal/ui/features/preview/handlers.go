package preview

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/viewgen/internal/example"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/leapstack-labs/viewgen/internal/ui/features/preview/pages"
)

// SessionName is the cookie session holding per-view selections.
const SessionName = "viewgen-preview"

func selectionKey(templateID string) string {
	return "selection:" + templateID
}

// Handlers provides HTTP handlers for the preview feature.
type Handlers struct {
	store        *scaffold.Store
	sessionStore sessions.Store
	live         bool
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance. With live set, pages
// subscribe to /reload.
func NewHandlers(store *scaffold.Store, sessionStore sessions.Store, live bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:        store,
		sessionStore: sessionStore,
		live:         live,
		logger:       logger,
	}
}

// IndexPage lists the templates.
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	page := pages.Page("Templates", h.live, pages.TemplateIndex(h.store.List()))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewPage renders a template's example view. The master-detail selection
// is restored from the session; until one exists the detail table is absent.
func (h *Handlers) ViewPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, ok := example.ForTemplate(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	selected := ""
	// A cookie signed with another secret yields a fresh session and an error.
	if session, err := h.sessionStore.Get(r, SessionName); err == nil {
		selected, _ = session.Values[selectionKey(id)].(string)
	}

	data, err := BuildViewData(h.store, id, view, selected)
	if err != nil {
		if scaffold.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := pages.Page(view.Title, h.live, pages.ViewContent(data)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SelectRow records the selected master row and patches the master table
// and detail panel over SSE. Unknown views or rows are rejected with 404
// before any event is sent.
func (h *Handlers) SelectRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	row := chi.URLParam(r, "row")

	view, ok := example.ForTemplate(id)
	if !ok || view.Link == nil {
		http.NotFound(w, r)
		return
	}

	sel, err := example.NewSelection(view)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := sel.Select(row); err != nil {
		if errors.Is(err, example.ErrUnknownRow) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := BuildViewData(h.store, id, view, row)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The cookie must be written before the SSE stream sends headers.
	session, _ := h.sessionStore.Get(r, SessionName)
	session.Values[selectionKey(id)] = row
	if err := session.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.logger.Debug("row selected", "template", id, "row", row)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(pages.MasterTable(data)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(pages.DetailPanel(data)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// BuildViewData assembles the page data for template id with the given
// master row selected. A selected id no longer in the master table is
// treated as no selection.
func BuildViewData(store *scaffold.Store, id string, view example.View, selected string) (pages.ViewData, error) {
	desc, err := store.Descriptor(id)
	if err != nil {
		return pages.ViewData{}, err
	}
	src, err := store.Get(id)
	if err != nil {
		return pages.ViewData{}, err
	}

	data := pages.ViewData{
		Descriptor: desc,
		View:       view,
		Source:     src,
		Overridden: store.Overridden(id),
	}

	if view.Link == nil {
		data.Tables = view.Tables
		return data, nil
	}

	sel, err := example.NewSelection(view)
	if err != nil {
		return pages.ViewData{}, err
	}
	if selected != "" && sel.Select(selected) == nil {
		data.Selected = selected
	}
	data.Tables = []example.Table{sel.Master()}
	data.Detail, data.HasDetail = sel.DetailTable()
	return data, nil
}
