package example

import (
	"errors"
	"fmt"
)

// ErrUnknownRow is returned when selecting a row id the master table lacks.
var ErrUnknownRow = errors.New("unknown row")

// ErrNoLink is returned when a selection is built for a view without a
// master-detail link.
var ErrNoLink = errors.New("view has no master-detail link")

// State is the master-detail selection state.
type State int

const (
	// NoSelection means no master row is selected and the detail table is hidden.
	NoSelection State = iota
	// RowSelected means exactly one master row is selected.
	RowSelected
)

func (s State) String() string {
	switch s {
	case NoSelection:
		return "no-selection"
	case RowSelected:
		return "row-selected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Selection tracks which master row is selected in a master-detail view.
// Once a row is selected there is no way back to NoSelection; selecting
// another row replaces it. It is not safe for concurrent use.
type Selection struct {
	view     View
	master   Table
	detail   Table
	state    State
	selected Row
}

// NewSelection starts a selection in the NoSelection state.
func NewSelection(v View) (*Selection, error) {
	if v.Link == nil {
		return nil, ErrNoLink
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	master, _ := v.Table(v.Link.Master)
	detail, _ := v.Table(v.Link.Detail)
	return &Selection{
		view:   v.clone(),
		master: master,
		detail: detail,
	}, nil
}

// State reports the current state.
func (s *Selection) State() State { return s.state }

// Select selects the master row whose primary key is id. Selecting the same
// row again leaves the state unchanged. An unknown id returns ErrUnknownRow
// and leaves the current selection in place.
func (s *Selection) Select(id string) error {
	for _, row := range s.master.Rows {
		if row[s.view.Link.PrimaryKey] == id {
			s.selected = row.Clone()
			s.state = RowSelected
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRow, id)
}

// Selected returns a copy of the selected master row.
func (s *Selection) Selected() (Row, bool) {
	if s.state != RowSelected {
		return nil, false
	}
	return s.selected.Clone(), true
}

// Detail returns the detail rows linked to the selected master row. The
// second result is false when nothing is selected and the detail table
// should not be rendered.
func (s *Selection) Detail() ([]Row, bool) {
	if s.state != RowSelected {
		return nil, false
	}
	key := s.selected[s.view.Link.PrimaryKey]
	return FilterByKey(s.detail.Rows, s.view.Link.ForeignKey, key), true
}

// DetailTable returns the detail table narrowed to the selected row. Its
// title gains " for <name>" when the master row has a name field.
func (s *Selection) DetailTable() (Table, bool) {
	rows, ok := s.Detail()
	if !ok {
		return Table{}, false
	}
	t := s.detail.clone()
	t.Rows = rows
	if name, ok := s.selected["name"]; ok {
		t.Title = t.Title + " for " + name
	}
	return t, true
}

// Master returns a copy of the master table.
func (s *Selection) Master() Table { return s.master.clone() }

// View returns a copy of the view the selection was built from.
func (s *Selection) View() View { return s.view.clone() }
