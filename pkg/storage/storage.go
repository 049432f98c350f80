// Package storage gives uniform access to project file contents.
//
// FileSystem reads and writes a real project tree. InMemory holds documents
// in memory, and Versioned additionally tracks a per-path version for the
// live-editing use case. Analysis runs never read a Storage directly; they
// work on a Snapshot taken when the run starts.
package storage

import (
	"errors"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrNotFound is returned (wrapped) when a path does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the read/write contract shared by every backend.
type Storage interface {
	// Read returns the content of path, normalized to valid UTF-8.
	Read(path string) (string, error)

	// Write replaces the content of path, creating it if needed.
	Write(path, content string) error

	// Exists reports whether path is present.
	Exists(path string) bool

	// List returns the sorted paths accepted by pred. A nil pred accepts all.
	List(pred func(path string) bool) []string
}

// Snapshotter is implemented by backends that can copy their whole state
// atomically.
type Snapshotter interface {
	Snapshot() *Snapshot
}

// normalize replaces invalid UTF-8 sequences with U+FFFD so every backend
// returns the same text for the same bytes.
func normalize(content string) string {
	if utf8.ValidString(content) {
		return content
	}
	decoded, err := unicode.UTF8.NewDecoder().String(content)
	if err != nil {
		return content
	}
	return decoded
}

func filterSorted(paths []string, pred func(string) bool) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if pred == nil || pred(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
