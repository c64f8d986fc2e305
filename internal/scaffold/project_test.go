package scaffold

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func compilerOptions(t *testing.T, cfg map[string]any) map[string]any {
	t.Helper()
	opts, ok := cfg["compilerOptions"].(map[string]any)
	require.True(t, ok, "compilerOptions must be an object")
	return opts
}

func TestWriteTSConfig_CreatesFromTemplate(t *testing.T) {
	dir := t.TempDir()

	pf, err := WriteTSConfig(context.Background(), dir, PreferTemplate)
	require.NoError(t, err)

	assert.Equal(t, StatusCreated, pf.Status)
	assert.Equal(t, filepath.Join(dir, TSConfigFile), pf.Path)

	want, err := fs.ReadFile(projectFS, "project/view.tsconfig.json")
	require.NoError(t, err)
	got, err := os.ReadFile(pf.Path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteTSConfig_Merge(t *testing.T) {
	const existing = `{
  "include": ["src"],
  "compilerOptions": {"jsx": "preserve", "outDir": "dist"}
}`

	tests := []struct {
		name        string
		strategy    MergeStrategy
		wantJSX     string
		wantChanged []string
	}{
		{
			name:     "template wins",
			strategy: PreferTemplate,
			wantJSX:  "react-jsx",
			wantChanged: []string{
				"compilerOptions.esModuleInterop",
				"compilerOptions.jsx",
				"compilerOptions.lib",
				"compilerOptions.module",
				"compilerOptions.moduleResolution",
				"compilerOptions.skipLibCheck",
				"compilerOptions.strict",
				"compilerOptions.target",
			},
		},
		{
			name:     "existing wins",
			strategy: PreferExisting,
			wantJSX:  "preserve",
			wantChanged: []string{
				"compilerOptions.esModuleInterop",
				"compilerOptions.lib",
				"compilerOptions.module",
				"compilerOptions.moduleResolution",
				"compilerOptions.skipLibCheck",
				"compilerOptions.strict",
				"compilerOptions.target",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, TSConfigFile)
			require.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

			pf, err := WriteTSConfig(context.Background(), dir, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, StatusUpdated, pf.Status)

			var keys []string
			for _, c := range pf.Changes {
				keys = append(keys, c.Key)
			}
			assert.Equal(t, tt.wantChanged, keys)

			cfg := readJSON(t, path)
			assert.Equal(t, []any{"src"}, cfg["include"], "unrelated keys are kept")
			opts := compilerOptions(t, cfg)
			assert.Equal(t, tt.wantJSX, opts["jsx"])
			assert.Equal(t, "dist", opts["outDir"])
			assert.Equal(t, true, opts["strict"])
		})
	}
}

func TestWriteTSConfig_ReportsOldValue(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TSConfigFile), []byte(`{"compilerOptions": {"jsx": "preserve"}}`), 0o600))

	pf, err := WriteTSConfig(context.Background(), dir, PreferTemplate)
	require.NoError(t, err)

	assert.Contains(t, pf.Changes, ConfigChange{Key: "compilerOptions.jsx", Old: `"preserve"`, New: `"react-jsx"`})
	assert.Contains(t, pf.Changes, ConfigChange{Key: "compilerOptions.strict", New: "true"})
}

func TestWriteTSConfig_UnchangedLeavesFileAlone(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteTSConfig(context.Background(), dir, PreferTemplate)
	require.NoError(t, err)

	// Formatting differs from what a rewrite would produce.
	path := filepath.Join(dir, TSConfigFile)
	compact := `{"compilerOptions":{"esModuleInterop":true,"jsx":"react-jsx","lib":["DOM","DOM.Iterable","ES2021"],"module":"ESNext","moduleResolution":"node","skipLibCheck":true,"strict":true,"target":"ES2021"}}`
	require.NoError(t, os.WriteFile(path, []byte(compact), 0o600))

	pf, err := WriteTSConfig(context.Background(), dir, PreferTemplate)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, pf.Status)
	assert.Empty(t, pf.Changes)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, compact, string(got))
}

func TestWriteTSConfig_Errors(t *testing.T) {
	t.Run("invalid existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, TSConfigFile)
		original := "{\n  // comments are not JSON\n}\n"
		require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

		_, err := WriteTSConfig(context.Background(), dir, PreferTemplate)
		require.Error(t, err)
		assert.NotEmpty(t, errors.GetAllHints(err))

		got, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, original, string(got), "file is not touched")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := WriteTSConfig(context.Background(), t.TempDir(), MergeStrategy("newest"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "newest")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := WriteTSConfig(context.Background(), filepath.Join(t.TempDir(), "missing"), PreferTemplate)
		require.Error(t, err)
		assert.True(t, IsIOError(err))
	})
}

func TestWritePackageJSON(t *testing.T) {
	t.Run("created and named after the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "My Views")
		require.NoError(t, os.Mkdir(dir, 0o750))

		pf, err := WritePackageJSON(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, StatusCreated, pf.Status)
		assert.Equal(t, filepath.Join(dir, PackageJSONFile), pf.Path)

		pkg := readJSON(t, pf.Path)
		assert.Equal(t, "my-views", pkg["name"])
		assert.Equal(t, true, pkg["private"])
		deps, ok := pkg["dependencies"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, deps, "@airplane/views")
	})

	t.Run("parent package is reused", func(t *testing.T) {
		root := t.TempDir()
		parentPkg := filepath.Join(root, PackageJSONFile)
		require.NoError(t, os.WriteFile(parentPkg, []byte(`{"name":"app"}`), 0o600))
		dir := filepath.Join(root, "views")
		require.NoError(t, os.Mkdir(dir, 0o750))

		pf, err := WritePackageJSON(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, StatusExisting, pf.Status)
		assert.Equal(t, parentPkg, pf.Path)

		_, statErr := os.Stat(filepath.Join(dir, PackageJSONFile))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestInitProject(t *testing.T) {
	dir := t.TempDir()

	files, err := InitProject(context.Background(), dir, PreferTemplate)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, TSConfigFile), files[0].Path)
	assert.Equal(t, StatusCreated, files[0].Status)
	assert.Equal(t, PackageJSONFile, filepath.Base(files[1].Path))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = InitProject(ctx, dir, PreferTemplate)
	assert.ErrorIs(t, err, context.Canceled)
}
