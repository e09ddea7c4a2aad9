package data

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// WorldEntry defines whether claims are allowed in one world.
type WorldEntry struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	Note    string `yaml:"note"`
}

// WorldTable answers whether claims are enabled per world. Unknown worlds are disabled.
// Operators may toggle worlds at runtime.
type WorldTable struct {
	mu      sync.RWMutex
	enabled map[string]bool
}

// NewWorldTable creates a table from entries.
func NewWorldTable(entries []WorldEntry) *WorldTable {
	t := &WorldTable{enabled: make(map[string]bool, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		t.enabled[e.Name] = e.Enabled
	}
	return t
}

// LoadWorldTable loads worlds.yaml.
func LoadWorldTable(path string) (*WorldTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world list: %w", err)
	}
	var entries []WorldEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse world list: %w", err)
	}
	return NewWorldTable(entries), nil
}

// IsEnabled reports whether claims are enabled in worldID.
func (t *WorldTable) IsEnabled(worldID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled[worldID]
}

// SetEnabled toggles claims for worldID, adding the world if unknown.
func (t *WorldTable) SetEnabled(worldID string, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled[worldID] = on
}

// Names returns every known world, sorted.
func (t *WorldTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.enabled))
	for n := range t.enabled {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of known worlds.
func (t *WorldTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.enabled)
}
