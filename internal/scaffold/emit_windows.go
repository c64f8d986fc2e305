//go:build windows

package scaffold

import "os"

// writeFile truncates and rewrites path in place; renameio does not support Windows.
func writeFile(path string, content []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // G304: caller-chosen destination
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(content); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
