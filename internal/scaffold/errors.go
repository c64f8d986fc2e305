package scaffold

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// NotFoundError is returned when a template identifier is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not found", e.ID)
}

// UnsupportedOptionError is returned when an init option does not resolve
// to any template.
type UnsupportedOptionError struct {
	Option    string
	Supported []string
}

func (e *UnsupportedOptionError) Error() string {
	if strings.TrimSpace(e.Option) == "" {
		return "no template option given"
	}
	return fmt.Sprintf("unsupported template option %q", e.Option)
}

// IOError wraps a filesystem failure while emitting a template.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func notFound(id string, available []string) error {
	return errors.WithHintf(&NotFoundError{ID: id},
		"available templates: %s", strings.Join(available, ", "))
}

func unsupported(option string, supported []string) error {
	return errors.WithHintf(&UnsupportedOptionError{Option: option, Supported: supported},
		"supported options: %s", strings.Join(supported, ", "))
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsUnsupportedOption reports whether err carries an UnsupportedOptionError.
func IsUnsupportedOption(err error) bool {
	var target *UnsupportedOptionError
	return errors.As(err, &target)
}

// IsIOError reports whether err carries an IOError.
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}
