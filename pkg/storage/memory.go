package storage

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// InMemory is a Storage held entirely in memory. Safe for concurrent use.
type InMemory struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewInMemory returns a storage seeded with files (path to content).
func NewInMemory(files map[string]string) *InMemory {
	s := &InMemory{files: make(map[string]string, len(files))}
	maps.Copy(s.files, files)
	return s
}

func (s *InMemory) Read(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return normalize(content), nil
}

func (s *InMemory) Write(path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[path] = content
	return nil
}

func (s *InMemory) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[path]
	return ok
}

func (s *InMemory) List(pred func(string) bool) []string {
	s.mu.RLock()
	paths := slices.Collect(maps.Keys(s.files))
	s.mu.RUnlock()

	return filterSorted(paths, pred)
}

// Remove deletes path.
func (s *InMemory) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, path)
}

// Snapshot copies the current state.
func (s *InMemory) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := newSnapshot(len(s.files))
	for path, content := range s.files {
		snap.put(path, Entry{Content: normalize(content), Loaded: true})
	}
	return snap.seal()
}
