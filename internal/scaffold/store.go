// Package scaffold stores the example view templates shipped with viewgen and
// writes them into user projects.
//
// Templates are embedded TSX files described by templates/manifest.yaml. A
// Store serves their exact bytes, optionally shadowed by files of the same
// name in a local overlay directory.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed all:templates
var templateFS embed.FS

const manifestName = "manifest.yaml"

// Descriptor describes one template from the manifest.
type Descriptor struct {
	ID          string   `yaml:"id" json:"id"`
	Category    string   `yaml:"category" json:"category"`
	Aliases     []string `yaml:"aliases" json:"aliases,omitempty"`
	File        string   `yaml:"file" json:"file"`
	Filename    string   `yaml:"filename" json:"filename"`
	Description string   `yaml:"description" json:"description"`
}

type manifest struct {
	Templates []Descriptor `yaml:"templates"`
}

// Store holds the fixed set of named templates.
type Store struct {
	fsys    fs.FS
	overlay string
	logger  *slog.Logger

	templates []Descriptor
	byID      map[string]int
	options   map[string]string // normalized selection input -> template id

	mu        sync.RWMutex
	overrides map[string][]byte
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOverlay serves <dir>/<filename> instead of the embedded asset when it exists.
func WithOverlay(dir string) StoreOption {
	return func(s *Store) {
		s.overlay = dir
	}
}

// WithFS replaces the embedded templates. fsys must contain manifest.yaml at its root.
func WithFS(fsys fs.FS) StoreOption {
	return func(s *Store) {
		s.fsys = fsys
	}
}

// WithLogger sets the logger used for overlay diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore loads the template manifest and any overlay files.
func NewStore(opts ...StoreOption) (*Store, error) {
	embedded, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}

	s := &Store{
		fsys:   embedded,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadManifest() error {
	data, err := fs.ReadFile(s.fsys, manifestName)
	if err != nil {
		return fmt.Errorf("failed to read template manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse template manifest: %w", err)
	}
	if len(m.Templates) == 0 {
		return fmt.Errorf("template manifest lists no templates")
	}

	s.templates = make([]Descriptor, 0, len(m.Templates))
	s.byID = make(map[string]int, len(m.Templates))
	s.options = make(map[string]string)

	for _, d := range m.Templates {
		if d.ID == "" {
			return fmt.Errorf("template manifest: entry with empty id")
		}
		if _, dup := s.byID[d.ID]; dup {
			return fmt.Errorf("template manifest: duplicate id %q", d.ID)
		}
		if d.Category == "" {
			return fmt.Errorf("template manifest: %s has no category", d.ID)
		}
		if _, err := fs.Stat(s.fsys, d.File); err != nil {
			return fmt.Errorf("template manifest: %s: %w", d.ID, err)
		}
		if d.Filename == "" {
			d.Filename = filepath.Base(d.File)
		}

		for _, key := range append([]string{d.ID, d.Category}, d.Aliases...) {
			norm := normalizeOption(key)
			if norm == "" {
				continue
			}
			if owner, taken := s.options[norm]; taken && owner != d.ID {
				return fmt.Errorf("template manifest: option %q used by both %s and %s", norm, owner, d.ID)
			}
			s.options[norm] = d.ID
		}

		s.byID[d.ID] = len(s.templates)
		s.templates = append(s.templates, d)
	}
	return nil
}

// Reload re-reads overlay files. It is a no-op without an overlay.
func (s *Store) Reload() error {
	if s.overlay == "" {
		return nil
	}

	overrides := make(map[string][]byte)
	for _, d := range s.templates {
		path := filepath.Join(s.overlay, d.Filename)
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from the configured overlay dir
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read overlay template %s: %w", path, err)
		}
		s.logger.Debug("using overlay template", "template", d.ID, "path", path)
		overrides[d.ID] = data
	}

	s.mu.Lock()
	s.overrides = overrides
	s.mu.Unlock()
	return nil
}

// Get returns the exact content of the template with the given id.
func (s *Store) Get(id string) ([]byte, error) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, notFound(id, s.IDs())
	}

	s.mu.RLock()
	override, ok := s.overrides[id]
	s.mu.RUnlock()
	if ok {
		return bytes.Clone(override), nil
	}

	data, err := fs.ReadFile(s.fsys, s.templates[idx].File)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", id, err)
	}
	return data, nil
}

// Descriptor returns the manifest entry for id.
func (s *Store) Descriptor(id string) (Descriptor, error) {
	idx, ok := s.byID[id]
	if !ok {
		return Descriptor{}, notFound(id, s.IDs())
	}
	return cloneDescriptor(s.templates[idx]), nil
}

// List returns all templates in manifest order.
func (s *Store) List() []Descriptor {
	out := make([]Descriptor, len(s.templates))
	for i, d := range s.templates {
		out[i] = cloneDescriptor(d)
	}
	return out
}

// IDs returns the template ids in manifest order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.templates))
	for i, d := range s.templates {
		ids[i] = d.ID
	}
	return ids
}

// Overlay returns the overlay directory, or "" when none is configured.
func (s *Store) Overlay() string {
	return s.overlay
}

// Overridden reports whether id is currently served from the overlay.
func (s *Store) Overridden(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overrides[id]
	return ok
}

func cloneDescriptor(d Descriptor) Descriptor {
	if d.Aliases != nil {
		d.Aliases = append([]string(nil), d.Aliases...)
	}
	return d
}

func normalizeOption(option string) string {
	return strings.ToLower(strings.TrimSpace(option))
}
