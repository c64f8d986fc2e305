package pages

import (
	"github.com/leapstack-labs/viewgen/internal/example"
	"github.com/leapstack-labs/viewgen/internal/scaffold"
)

// ViewData is everything needed to render one template's preview page.
type ViewData struct {
	Descriptor scaffold.Descriptor
	View       example.View
	Source     []byte
	Overridden bool

	// Tables holds every table for plain views, or just the master table
	// for master-detail views.
	Tables []example.Table

	// Selected is the selected master row id, empty when nothing is selected.
	Selected  string
	Detail    example.Table
	HasDetail bool
}
