package pages

import (
	"net/url"

	"github.com/a-h/templ"
)

// Helper functions for preview page components

// DetailPanelID is the DOM id of the element holding the detail table.
const DetailPanelID = "detail"

// MasterTableID returns the DOM id of a master table.
func MasterTableID(tableID string) string {
	return "table-" + tableID
}

// ViewURL returns the preview page of template id.
func ViewURL(id string) templ.SafeURL {
	return templ.SafeURL("/views/" + url.PathEscape(id))
}

// SelectURL returns the endpoint that selects row in the view of template id.
func SelectURL(id, row string) string {
	return "/views/" + url.PathEscape(id) + "/select/" + url.PathEscape(row)
}

func selectAction(id, row string) string {
	return "@post('" + SelectURL(id, row) + "')"
}
