package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	require.NoError(t, err)
	return s
}

func TestEmit_ByteIdentical(t *testing.T) {
	s := newTestStore(t)

	for _, id := range s.IDs() {
		t.Run(id, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.view.tsx")

			res, err := Emit(context.Background(), s, id, dest)
			require.NoError(t, err)

			want, err := s.Get(id)
			require.NoError(t, err)
			got, err := os.ReadFile(dest)
			require.NoError(t, err)

			assert.Equal(t, want, got)
			assert.Equal(t, dest, res.Path)
			assert.Equal(t, id, res.TemplateID)
			assert.Equal(t, len(want), res.Bytes)
			assert.False(t, res.Replaced)
		})
	}
}

func TestEmit_DirectoryDestination(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	res, err := Emit(context.Background(), s, "customers", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "customers.view.tsx"), res.Path)
	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}

func TestEmit_OverwriteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	dest := filepath.Join(t.TempDir(), "default.view.tsx")

	// Longer pre-existing content must not leave a tail behind.
	junk := make([]byte, 8192)
	for i := range junk {
		junk[i] = 'x'
	}
	require.NoError(t, os.WriteFile(dest, junk, 0o600))

	first, err := Emit(context.Background(), s, "default", dest)
	require.NoError(t, err)
	assert.True(t, first.Replaced)
	once, err := os.ReadFile(dest)
	require.NoError(t, err)

	second, err := Emit(context.Background(), s, "default", dest)
	require.NoError(t, err)
	assert.True(t, second.Replaced)
	twice, err := os.ReadFile(dest)
	require.NoError(t, err)

	want, err := s.Get("default")
	require.NoError(t, err)
	assert.Equal(t, want, once)
	assert.Equal(t, once, twice)
}

func TestEmit_MissingParentDirectory(t *testing.T) {
	s := newTestStore(t)
	dest := filepath.Join(t.TempDir(), "does", "not", "exist", "view.tsx")

	_, err := Emit(context.Background(), s, "default", dest)
	require.Error(t, err)
	assert.True(t, IsIOError(err))

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, dest, ioErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEmit_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	s := newTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	_, err := Emit(context.Background(), s, "default", filepath.Join(dir, "view.tsx"))
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.ErrorIs(t, err, os.ErrPermission)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed write must not leave files behind")
}

func TestEmit_UnknownTemplate(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	_, err := Emit(context.Background(), s, "kanban", dir)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsIOError(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmit_CanceledContext(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Emit(ctx, s, "default", dir)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInit(t *testing.T) {
	s := newTestStore(t)

	t.Run("supported option", func(t *testing.T) {
		dir := t.TempDir()
		res, err := Init(context.Background(), s, "Master-Detail", dir)
		require.NoError(t, err)
		assert.Equal(t, "customers", res.TemplateID)

		got, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		want, err := s.Get("customers")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("unsupported option writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "view.tsx")

		res, err := Init(context.Background(), s, "kanban", dest)
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, IsUnsupportedOption(err))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
