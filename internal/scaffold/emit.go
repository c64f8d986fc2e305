package scaffold

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// filePerm is the mode of emitted view files before umask.
const filePerm = 0o644

// Result reports what Emit wrote.
type Result struct {
	TemplateID string `json:"template"`
	Path       string `json:"path"`
	Bytes      int    `json:"bytes"`
	Replaced   bool   `json:"replaced"`
}

// Emit writes the exact content of template id to dest. If dest is an
// existing directory the template's default filename is used inside it.
// An existing file is overwritten entirely. Parent directories are not
// created. Filesystem failures are returned as *IOError.
func Emit(ctx context.Context, store *Store, id, dest string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	desc, err := store.Descriptor(id)
	if err != nil {
		return nil, err
	}
	content, err := store.Get(id)
	if err != nil {
		return nil, err
	}

	path, err := resolveDestination(dest, desc.Filename)
	if err != nil {
		return nil, err
	}

	replaced := false
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		replaced = true
	}

	if err := writeFile(path, content, filePerm); err != nil {
		return nil, err
	}

	return &Result{
		TemplateID: id,
		Path:       path,
		Bytes:      len(content),
		Replaced:   replaced,
	}, nil
}

// Init selects the template for option and emits it to dest. Unsupported
// options fail before the filesystem is touched.
func Init(ctx context.Context, store *Store, option, dest string) (*Result, error) {
	id, err := store.Select(option)
	if err != nil {
		return nil, err
	}
	return Emit(ctx, store, id, dest)
}

func resolveDestination(dest, filename string) (string, error) {
	if dest == "" {
		dest = "."
	}

	info, err := os.Stat(dest)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(dest, filename), nil
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return dest, nil
	default:
		return "", &IOError{Op: "stat", Path: dest, Err: err}
	}
}
