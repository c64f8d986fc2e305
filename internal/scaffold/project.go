package scaffold

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed project
var projectFS embed.FS

// Supporting files written next to a view by InitProject.
const (
	TSConfigFile    = "tsconfig.json"
	PackageJSONFile = "package.json"
)

// MergeStrategy decides which value wins when a tsconfig.json key is set
// both in the project and in the view template.
type MergeStrategy string

// Merge strategies.
const (
	PreferTemplate MergeStrategy = "template"
	PreferExisting MergeStrategy = "existing"
)

// Project file statuses.
const (
	StatusCreated   = "created"
	StatusUpdated   = "updated"
	StatusUnchanged = "unchanged"
	StatusExisting  = "existing"
)

// ConfigChange is one tsconfig.json key the merge sets or changes. Values
// are JSON; Old is empty for keys the project did not have.
type ConfigChange struct {
	Key string `json:"key"`
	Old string `json:"old,omitempty"`
	New string `json:"new"`
}

// ProjectFile reports what happened to one supporting project file.
type ProjectFile struct {
	Path    string         `json:"path"`
	Status  string         `json:"status"`
	Changes []ConfigChange `json:"changes,omitempty"`
}

// InitProject prepares dir for compiling views: tsconfig.json gets the
// view compiler options merged in and a package.json is created unless one
// exists in dir or a parent.
func InitProject(ctx context.Context, dir string, strategy MergeStrategy) ([]*ProjectFile, error) {
	tsconfig, err := WriteTSConfig(ctx, dir, strategy)
	if err != nil {
		return nil, err
	}
	pkg, err := WritePackageJSON(ctx, dir)
	if err != nil {
		return nil, err
	}
	return []*ProjectFile{tsconfig, pkg}, nil
}

// WriteTSConfig writes the view tsconfig.json into dir, or merges it into
// the one already there. With PreferExisting, keys already set in the
// project keep their values; with PreferTemplate the view options win.
// Nested objects merge key by key, anything else is replaced whole.
func WriteTSConfig(ctx context.Context, dir string, strategy MergeStrategy) (*ProjectFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strategy != PreferTemplate && strategy != PreferExisting {
		return nil, errors.Newf("unknown tsconfig merge strategy %q", strategy)
	}

	tmpl, err := fs.ReadFile(projectFS, "project/view.tsconfig.json")
	if err != nil {
		return nil, errors.Wrap(err, "read view tsconfig template")
	}
	path := filepath.Join(dir, TSConfigFile)

	existingRaw, err := os.ReadFile(path) //nolint:gosec // G304: project file under the view directory
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeFile(path, tmpl, filePerm); err != nil {
			return nil, err
		}
		return &ProjectFile{Path: path, Status: StatusCreated}, nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	var template, existing map[string]any
	if err := json.Unmarshal(tmpl, &template); err != nil {
		return nil, errors.Wrap(err, "parse view tsconfig template")
	}
	if err := json.Unmarshal(existingRaw, &existing); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "parse %s", path),
			"tsconfig.json is merged as plain JSON; remove comments and trailing commas, or omit --project",
		)
	}
	if existing == nil {
		existing = map[string]any{}
	}

	merged := map[string]any{}
	if strategy == PreferExisting {
		mergeConfig(merged, template)
		mergeConfig(merged, existing)
	} else {
		mergeConfig(merged, existing)
		mergeConfig(merged, template)
	}

	changes := configChanges(merged, existing, "")
	if len(changes) == 0 {
		return &ProjectFile{Path: path, Status: StatusUnchanged}, nil
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode tsconfig.json")
	}
	if err := writeFile(path, append(out, '\n'), filePerm); err != nil {
		return nil, err
	}
	return &ProjectFile{Path: path, Status: StatusUpdated, Changes: changes}, nil
}

// WritePackageJSON creates dir/package.json named after dir, unless a
// package.json already exists in dir or one of its parents.
func WritePackageJSON(ctx context.Context, dir string) (*ProjectFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &IOError{Op: "resolve", Path: dir, Err: err}
	}
	if found, ok := findUp(abs, PackageJSONFile); ok {
		return &ProjectFile{Path: found, Status: StatusExisting}, nil
	}

	tmpl, err := fs.ReadFile(projectFS, "project/package.json")
	if err != nil {
		return nil, errors.Wrap(err, "read package.json template")
	}
	var pkg map[string]any
	if err := json.Unmarshal(tmpl, &pkg); err != nil {
		return nil, errors.Wrap(err, "parse package.json template")
	}
	pkg["name"] = packageName(abs)

	out, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode package.json")
	}
	path := filepath.Join(dir, PackageJSONFile)
	if err := writeFile(path, append(out, '\n'), filePerm); err != nil {
		return nil, err
	}
	return &ProjectFile{Path: path, Status: StatusCreated}, nil
}

func mergeConfig(dst, src map[string]any) {
	for key, value := range src {
		sub, ok := value.(map[string]any)
		if !ok {
			dst[key] = value
			continue
		}
		dstSub, ok := dst[key].(map[string]any)
		if !ok {
			dstSub = map[string]any{}
			dst[key] = dstSub
		}
		mergeConfig(dstSub, sub)
	}
}

// configChanges lists the leaf keys of merged that differ from existing,
// sorted by dotted key.
func configChanges(merged, existing map[string]any, prefix string) []ConfigChange {
	var changes []ConfigChange
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		newVal := merged[key]
		oldVal, had := existing[key]

		if newSub, ok := newVal.(map[string]any); ok {
			oldSub, _ := oldVal.(map[string]any)
			if oldSub == nil && had {
				changes = append(changes, ConfigChange{Key: name, Old: jsonString(oldVal), New: jsonString(newVal)})
				continue
			}
			changes = append(changes, configChanges(newSub, oldSub, name)...)
			continue
		}
		if had && reflect.DeepEqual(newVal, oldVal) {
			continue
		}
		change := ConfigChange{Key: name, New: jsonString(newVal)}
		if had {
			change.Old = jsonString(oldVal)
		}
		changes = append(changes, change)
	}
	return changes
}

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func findUp(dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// packageName derives an npm package name from a directory path.
func packageName(dir string) string {
	return strings.ReplaceAll(strings.ToLower(filepath.Base(dir)), " ", "-")
}
