// Package example models the data behind the shipped example views: row
// records, column descriptors, tables and the master-detail selection that
// filters one table by the row picked in another.
package example

import (
	"fmt"
	"slices"
)

// RowSelectionSingle lets the user select one row at a time.
const RowSelectionSingle = "single"

// Row is one record displayed as a table row, keyed by field name.
type Row map[string]string

// Get returns the value of field and whether the row has it.
func (r Row) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Column pairs a display label with the field it reads from each row.
type Column struct {
	Label    string `json:"label"`
	Accessor string `json:"accessor"`
}

// Table is one table inside a view.
type Table struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Columns       []Column `json:"columns"`
	Rows          []Row    `json:"data"`
	RowSelection  string   `json:"rowSelection,omitempty"`
	HiddenColumns []string `json:"hiddenColumns,omitempty"`
}

// VisibleColumns returns the columns not listed in HiddenColumns.
func (t Table) VisibleColumns() []Column {
	out := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if slices.Contains(t.HiddenColumns, c.Accessor) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Validate checks that every accessor and hidden column names a field
// present in every row.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Title)
	}
	if t.RowSelection != "" && t.RowSelection != RowSelectionSingle {
		return fmt.Errorf("table %q: unsupported row selection %q", t.Title, t.RowSelection)
	}

	fields := make([]string, 0, len(t.Columns)+len(t.HiddenColumns))
	for _, c := range t.Columns {
		if c.Accessor == "" {
			return fmt.Errorf("table %q: column %q has no accessor", t.Title, c.Label)
		}
		fields = append(fields, c.Accessor)
	}
	fields = append(fields, t.HiddenColumns...)

	for i, row := range t.Rows {
		for _, f := range fields {
			if _, ok := row[f]; !ok {
				return fmt.Errorf("table %q: row %d has no field %q", t.Title, i, f)
			}
		}
	}
	return nil
}

func (t Table) clone() Table {
	out := t
	out.Columns = slices.Clone(t.Columns)
	out.HiddenColumns = slices.Clone(t.HiddenColumns)
	out.Rows = cloneRows(t.Rows)
	return out
}

// MasterDetail links a master table to a detail table: detail rows whose
// ForeignKey equals the selected master row's PrimaryKey are shown.
type MasterDetail struct {
	Master     string `json:"master"`
	Detail     string `json:"detail"`
	PrimaryKey string `json:"primaryKey"`
	ForeignKey string `json:"foreignKey"`
}

// View is a composition of a title, text and one or more tables.
type View struct {
	TemplateID string        `json:"template"`
	Title      string        `json:"title"`
	Text       string        `json:"text"`
	Tables     []Table       `json:"tables"`
	Link       *MasterDetail `json:"link,omitempty"`
}

// Table returns the table with the given id.
func (v View) Table(id string) (Table, bool) {
	for _, t := range v.Tables {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Table{}, false
}

// Validate checks every table and, when present, the master-detail link.
func (v View) Validate() error {
	for _, t := range v.Tables {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("view %q: %w", v.Title, err)
		}
	}
	if v.Link == nil {
		return nil
	}

	master, ok := v.Table(v.Link.Master)
	if !ok {
		return fmt.Errorf("view %q: master table %q not found", v.Title, v.Link.Master)
	}
	detail, ok := v.Table(v.Link.Detail)
	if !ok {
		return fmt.Errorf("view %q: detail table %q not found", v.Title, v.Link.Detail)
	}
	if master.RowSelection != RowSelectionSingle {
		return fmt.Errorf("view %q: master table %q must use single row selection", v.Title, master.ID)
	}
	for i, row := range master.Rows {
		if _, ok := row[v.Link.PrimaryKey]; !ok {
			return fmt.Errorf("view %q: master row %d has no key %q", v.Title, i, v.Link.PrimaryKey)
		}
	}
	for i, row := range detail.Rows {
		if _, ok := row[v.Link.ForeignKey]; !ok {
			return fmt.Errorf("view %q: detail row %d has no key %q", v.Title, i, v.Link.ForeignKey)
		}
	}
	return nil
}

func (v View) clone() View {
	out := v
	out.Tables = make([]Table, len(v.Tables))
	for i, t := range v.Tables {
		out.Tables[i] = t.clone()
	}
	if v.Link != nil {
		link := *v.Link
		out.Link = &link
	}
	return out
}

// FilterByKey returns copies of the rows whose field equals value.
// The result is never nil.
func FilterByKey(rows []Row, field, value string) []Row {
	out := make([]Row, 0)
	for _, r := range rows {
		if v, ok := r[field]; ok && v == value {
			out = append(out, r.Clone())
		}
	}
	return out
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
