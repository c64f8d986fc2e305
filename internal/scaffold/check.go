package scaffold

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

// Diagnostic is a syntax problem reported for a template source.
type Diagnostic struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.File, d.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Text)
}

// CheckSource transforms src as TSX and returns any errors esbuild reports.
// Imports are left unresolved; only the syntax is checked.
func CheckSource(name string, src []byte) []Diagnostic {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderTSX,
		JSX:        api.JSXAutomatic,
		Sourcefile: name,
		Target:     api.ES2020,
		LogLevel:   api.LogLevelSilent,
	})

	diags := make([]Diagnostic, 0, len(result.Errors))
	for _, msg := range result.Errors {
		d := Diagnostic{File: name, Text: msg.Text}
		if msg.Location != nil {
			d.Line = msg.Location.Line
			d.Column = msg.Location.Column
		}
		diags = append(diags, d)
	}
	return diags
}

// Check runs CheckSource on the current content of template id.
func (s *Store) Check(id string) ([]Diagnostic, error) {
	desc, err := s.Descriptor(id)
	if err != nil {
		return nil, err
	}
	src, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return CheckSource(desc.Filename, src), nil
}
