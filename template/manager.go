package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Manager holds the built-in catalog plus user templates loaded from a
// directory of JSON files (one file per template, <name>.json). A user
// template may not shadow a built-in one.
type Manager struct {
	mu        sync.RWMutex
	dir       string
	templates map[string]Template
}

// NewManager loads templates from dir. The directory is created if it
// does not exist.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("template: create dir %s: %w", dir, err)
	}
	m := &Manager{
		dir:       dir,
		templates: make(map[string]Template),
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads the catalog and all user template files.
func (m *Manager) Reload() error {
	loaded := make(map[string]Template)
	for _, t := range Builtins() {
		loaded[t.Name] = t
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("template: read dir %s: %w", m.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("template: read %s: %w", path, err)
		}
		var t Template
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("template: malformed %s: %w", path, err)
		}
		if existing, ok := loaded[t.Name]; ok && existing.Builtin {
			// User files cannot shadow the catalog.
			continue
		}
		t.Builtin = false
		loaded[t.Name] = t
	}

	m.mu.Lock()
	m.templates = loaded
	m.mu.Unlock()
	return nil
}

// List returns all templates sorted by name.
func (m *Manager) List() []Template {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a template by name.
func (m *Manager) Get(name string) (Template, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[name]
	return t, ok
}

// Search returns templates matching the query, sorted by name.
func (m *Manager) Search(query string) []Template {
	var out []Template
	for _, t := range m.List() {
		if t.MatchesSearch(query) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the sorted set of categories in use.
func (m *Manager) Categories() []string {
	seen := make(map[string]struct{})
	for _, t := range m.List() {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Save persists a user template, creating or replacing it. Built-in
// names are rejected. The creation time of an existing template is
// preserved.
func (m *Manager) Save(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("template: name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.templates[t.Name]; ok {
		if existing.Builtin {
			return fmt.Errorf("template: cannot modify built-in template %q", t.Name)
		}
		t.CreatedAt = existing.CreatedAt
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.UpdatedAt = time.Now().UTC()
	t.Builtin = false

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("template: marshal %q: %w", t.Name, err)
	}
	data = append(data, '\n')
	path := filepath.Join(m.dir, t.Name+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("template: write %s: %w", path, err)
	}

	m.templates[t.Name] = t
	return nil
}

// Delete removes a user template. Built-in templates cannot be deleted.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.templates[name]
	if !ok {
		return fmt.Errorf("template: not found: %s", name)
	}
	if t.Builtin {
		return fmt.Errorf("template: cannot delete built-in template %q", name)
	}

	path := filepath.Join(m.dir, name+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("template: remove %s: %w", path, err)
	}
	delete(m.templates, name)
	return nil
}
