// Package score persists high-score lists.
package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps one list as a JSON array in a file. A missing file is an
// empty list.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("score: read %s: %w", s.path, err)
	}
	var scores []int
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("score: decode %s: %w", s.path, err)
	}
	return scores, nil
}

func (s *FileStore) Save(scores []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scores == nil {
		scores = []int{}
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("score: encode: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("score: write %s: %w", s.path, err)
	}
	return nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".scores-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// DirStore hands out one FileStore per player under a directory.
type DirStore struct {
	dir string

	mu     sync.Mutex
	stores map[string]*FileStore
}

func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir, stores: make(map[string]*FileStore)}
}

// For returns the store for a player. Names are reduced to a safe file name;
// an empty result maps to "anonymous".
func (d *DirStore) For(player string) *FileStore {
	name := SanitizeName(player)

	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.stores[name]; ok {
		return s
	}
	s := NewFileStore(filepath.Join(d.dir, name+".json"))
	d.stores[name] = s
	return s
}

// SanitizeName keeps ASCII letters, digits, '-' and '_', lowercased and cut
// to 64 characters.
func SanitizeName(player string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(player) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() == 64 {
			break
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}

// MemoryStore keeps the list in memory. Used for throwaway sessions.
type MemoryStore struct {
	mu     sync.Mutex
	scores []int
}

func (m *MemoryStore) Load() ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.scores), nil
}

func (m *MemoryStore) Save(scores []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = slices.Clone(scores)
	return nil
}
