package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	// ConfigFileName is the settings file inside the data directory.
	ConfigFileName = "config.toml"

	// HomeEnv overrides the default data directory.
	HomeEnv = "SCHEME_RESEARCH_HOME"
)

// ConfigStore keeps settings as flat dotted keys in memory and as nested
// TOML tables on disk. Every Set rewrites the file.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	data map[string]any
}

// NewConfigStore opens dir/config.toml, creating dir when needed. An empty
// dir means DefaultDir.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, ConfigFileName)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultDir is $SCHEME_RESEARCH_HOME, or ~/.scheme-research.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".scheme-research"), nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt reads TOML integers (int64) as well as values set in process.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Set writes the file with key updated. The in-memory value only changes
// when the write succeeds.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.data)
	next[key] = value
	if err := s.write(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *ConfigStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.write(s.data)
}

// write replaces the file through a temp file and rename.
func (s *ConfigStore) write(data map[string]any) error {
	out, err := toml.Marshal(nestMap(data))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Load replaces the in-memory settings with the file. A missing file
// yields an empty store.
func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	tables := map[string]any{}
	if err := toml.Unmarshal(raw, &tables); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.data = flattenMap(tables, "")
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(tables map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	for k, v := range tables {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			maps.Copy(flat, flattenMap(sub, k))
			continue
		}
		flat[k] = v
	}
	return flat
}

// nestMap inverts flattenMap. When a key is both a value and a table prefix
// ("qa" and "qa.model") the later key stays at the top level under its full
// dotted name, which TOML writes as a quoted key.
func nestMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		if !insert(root, strings.Split(key, "."), flat[key]) {
			root[key] = flat[key]
		}
	}
	return root
}

func insert(node map[string]any, path []string, value any) bool {
	head := path[0]
	if len(path) == 1 {
		if _, isTable := node[head].(map[string]any); isTable {
			return false
		}
		node[head] = value
		return true
	}

	child, exists := node[head]
	if !exists {
		child = make(map[string]any)
		node[head] = child
	}
	table, ok := child.(map[string]any)
	if !ok {
		return false
	}
	return insert(table, path[1:], value)
}
