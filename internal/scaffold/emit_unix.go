//go:build !windows

package scaffold

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFile writes content through a temp file in the destination directory
// and renames it into place, so readers never see a partial file.
func writeFile(path string, content []byte, perm os.FileMode) error {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() { _ = f.Cleanup() }()

	if _, err := f.Write(content); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return &IOError{Op: "replace", Path: path, Err: err}
	}
	return nil
}
