package storage

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

type versionedDoc struct {
	content string
	version int
}

// Versioned is an in-memory Storage that tracks a version per path. The
// first write of a path records version 1 and every later Write adds one.
// Versions are never reset while the path exists; Remove forgets it.
//
// Versioned does not order writes: callers that receive versions from an
// editor use WriteVersion and compare versions themselves.
type Versioned struct {
	mu   sync.RWMutex
	docs map[string]versionedDoc
}

// NewVersioned returns an empty versioned storage.
func NewVersioned() *Versioned {
	return &Versioned{docs: make(map[string]versionedDoc)}
}

func (s *Versioned) Read(path string) (string, error) {
	content, _, err := s.ReadVersion(path)
	return content, err
}

// ReadVersion returns the content of path together with its version.
func (s *Versioned) ReadVersion(path string) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return normalize(doc.content), doc.version, nil
}

// Write stores content and bumps the version of path by one.
func (s *Versioned) Write(path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docs[path]
	s.docs[path] = versionedDoc{content: content, version: doc.version + 1}
	return nil
}

// WriteVersion stores content under a caller-supplied version.
func (s *Versioned) WriteVersion(path, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[path] = versionedDoc{content: content, version: version}
}

// Version returns the version of path, or 0 when it is absent.
func (s *Versioned) Version(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.docs[path].version
}

func (s *Versioned) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[path]
	return ok
}

func (s *Versioned) List(pred func(string) bool) []string {
	s.mu.RLock()
	paths := slices.Collect(maps.Keys(s.docs))
	s.mu.RUnlock()

	return filterSorted(paths, pred)
}

// Remove forgets path and its version.
func (s *Versioned) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, path)
}

// Snapshot copies every document and its version atomically.
func (s *Versioned) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := newSnapshot(len(s.docs))
	for path, doc := range s.docs {
		snap.put(path, Entry{Content: normalize(doc.content), Version: doc.version, Loaded: true})
	}
	return snap.seal()
}
