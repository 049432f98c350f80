package storage

import (
	"fmt"
	"sort"
)

// Entry is the state of one path in a Snapshot.
type Entry struct {
	Content string
	Version int

	// Loaded is false for paths whose content was not requested.
	Loaded bool

	// Err is the read failure for the path, if any.
	Err error
}

// Snapshot is an immutable view of a storage taken at one point in time.
// Later writes to the storage are not observed.
type Snapshot struct {
	entries map[string]Entry
	paths   []string
}

func newSnapshot(size int) *Snapshot {
	return &Snapshot{entries: make(map[string]Entry, size)}
}

func (s *Snapshot) put(path string, e Entry) {
	s.entries[path] = e
}

func (s *Snapshot) seal() *Snapshot {
	s.paths = make([]string, 0, len(s.entries))
	for p := range s.entries {
		s.paths = append(s.paths, p)
	}
	sort.Strings(s.paths)
	return s
}

// NewSnapshot builds a snapshot from literal contents, all at version 1.
func NewSnapshot(files map[string]string) *Snapshot {
	snap := newSnapshot(len(files))
	for path, content := range files {
		snap.put(path, Entry{Content: normalize(content), Version: 1, Loaded: true})
	}
	return snap.seal()
}

// Take snapshots st. Backends implementing Snapshotter copy themselves
// atomically; others are listed and read path by path, loading content
// only where load returns true (nil loads everything).
func Take(st Storage, load func(path string) bool) *Snapshot {
	if s, ok := st.(Snapshotter); ok {
		return s.Snapshot()
	}

	paths := st.List(nil)
	snap := newSnapshot(len(paths))
	for _, p := range paths {
		if load != nil && !load(p) {
			snap.put(p, Entry{})
			continue
		}
		content, err := st.Read(p)
		snap.put(p, Entry{Content: content, Loaded: err == nil, Err: err})
	}
	return snap.seal()
}

// Paths returns every path in sorted order.
func (s *Snapshot) Paths() []string {
	return s.paths
}

// Entry returns the state of path.
func (s *Snapshot) Entry(path string) (Entry, bool) {
	e, ok := s.entries[path]
	return e, ok
}

// Read returns the content and version of path.
func (s *Snapshot) Read(path string) (string, int, error) {
	e, ok := s.entries[path]
	switch {
	case !ok:
		return "", 0, fmt.Errorf("%w: %s", ErrNotFound, path)
	case e.Err != nil:
		return "", e.Version, e.Err
	default:
		return e.Content, e.Version, nil
	}
}

// Exists reports whether path is part of the snapshot.
func (s *Snapshot) Exists(path string) bool {
	_, ok := s.entries[path]
	return ok
}

// List returns the sorted paths accepted by pred.
func (s *Snapshot) List(pred func(string) bool) []string {
	return filterSorted(s.paths, pred)
}

// Len returns the number of paths.
func (s *Snapshot) Len() int {
	return len(s.paths)
}
