// Package session keeps the latest diagnostics per path for editor
// integrations and computes what changed since they were last published.
//
// Results may arrive out of order. A result computed against an older
// version of a file never replaces one computed against a newer version.
package session

import (
	"slices"
	"sync"

	"github.com/yaklabco/poscheck/pkg/analyzer"
	"github.com/yaklabco/poscheck/pkg/check"
)

// Entry is the recorded state of one path.
type Entry struct {
	Path     string
	Version  int
	Offenses []check.Offense
}

type record struct {
	version int
	single  []check.Offense
	project []check.Offense
}

func (r record) offenses() []check.Offense {
	return check.Sorted(slices.Concat(r.single, r.project))
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	records   map[string]record
	published map[string][]check.Offense

	// forgotten holds the last known version of removed paths. Results at
	// or below it were computed before the removal.
	forgotten map[string]int
}

// New returns an empty session.
func New() *Session {
	return &Session{
		records:   make(map[string]record),
		published: make(map[string][]check.Offense),
		forgotten: make(map[string]int),
	}
}

// Record stores offenses as the complete set for path at version. It is a
// no-op returning false when a newer version is already recorded.
func (s *Session) Record(path string, version int, offenses []check.Offense) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[path]
	if s.stale(path, version, cur, ok) {
		return false
	}
	s.records[path] = record{version: version, single: slices.Clone(offenses)}
	delete(s.forgotten, path)
	return true
}

// stale reports whether a result for path at version is older than what
// the session knows. Callers hold s.mu.
func (s *Session) stale(path string, version int, cur record, recorded bool) bool {
	if recorded && version < cur.version {
		return true
	}
	if gone, ok := s.forgotten[path]; ok && version <= gone {
		return true
	}
	return false
}

// Entry returns the recorded state of path.
func (s *Session) Entry(path string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[path]
	if !ok {
		return Entry{}, false
	}
	return Entry{Path: path, Version: rec.version, Offenses: rec.offenses()}, true
}

// Paths returns every recorded path, sorted.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.records))
	for p := range s.records {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Forget drops path. If diagnostics were published for it, the next diff
// clears them. Results for path at or below its recorded version are
// rejected afterwards.
func (s *Session) Forget(path string) {
	s.ForgetAt(path, 0)
}

// ForgetAt is Forget for a path whose last stored version is known, so
// results computed before the removal are rejected even when none of them
// had been recorded yet.
func (s *Session) ForgetAt(path string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[path]; ok {
		version = max(version, rec.version)
	}
	version = max(version, s.forgotten[path])
	delete(s.records, path)
	if version > 0 {
		s.forgotten[path] = version
	}
}

// Forgotten returns the version path had when it was last forgotten, or 0.
// A path stored again must use a higher version for its results to be
// accepted.
func (s *Session) Forgotten(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forgotten[path]
}

// RecordRun records an analysis result and returns the number of paths
// whose entry was updated.
//
// Every path the single-file pass covered is recorded, so a clean file
// clears its diagnostics. When the run had no whole-project pass, the
// whole-project offenses already recorded for the same version are kept.
// When it had one, whole-project offenses are replaced everywhere.
func (s *Session) RecordRun(res *analyzer.Result) int {
	single := group(res.SingleFile)
	project := group(res.WholeProject)
	analysed := make(map[string]bool, len(res.Paths))
	for _, p := range res.Paths {
		analysed[p] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]bool)
	for _, p := range res.Paths {
		touched[p] = true
	}
	for p := range single {
		touched[p] = true
	}
	for p := range project {
		touched[p] = true
	}
	if res.ProjectPass {
		for p, rec := range s.records {
			if len(rec.project) > 0 {
				touched[p] = true
			}
		}
	}

	updated := 0
	for p := range touched {
		cur, exists := s.records[p]
		version := versionOf(res, p, single[p], project[p], cur)
		if s.stale(p, version, cur, exists) {
			continue
		}
		sameVersion := exists && cur.version == version

		rec := record{version: version}
		switch {
		case analysed[p]:
			rec.single = single[p]
		case sameVersion:
			rec.single = slices.Concat(cur.single, single[p])
		default:
			rec.single = single[p]
		}
		switch {
		case res.ProjectPass:
			rec.project = project[p]
		case sameVersion:
			rec.project = cur.project
		}

		s.records[p] = rec
		delete(s.forgotten, p)
		updated++
	}
	return updated
}

func versionOf(res *analyzer.Result, path string, single, project []check.Offense, cur record) int {
	if v, ok := res.Versions[path]; ok {
		return v
	}
	for _, o := range slices.Concat(single, project) {
		if o.Version() > 0 {
			return o.Version()
		}
	}
	return cur.version
}

func group(offenses []check.Offense) map[string][]check.Offense {
	out := make(map[string][]check.Offense)
	for _, o := range offenses {
		out[o.Path()] = append(out[o.Path()], o)
	}
	return out
}

// DiffSinceLastPublish returns the paths whose offenses differ from what
// the previous call returned, and marks them published. Forgotten paths
// that had published offenses map to an empty list.
func (s *Session) DiffSinceLastPublish() map[string][]check.Offense {
	s.mu.Lock()
	defer s.mu.Unlock()

	diff := make(map[string][]check.Offense)
	for p, rec := range s.records {
		current := rec.offenses()
		if slices.EqualFunc(current, s.published[p], check.Offense.Equal) {
			if _, seen := s.published[p]; seen || len(current) == 0 {
				continue
			}
		}
		diff[p] = current
		s.published[p] = current
	}
	for p, prev := range s.published {
		if _, ok := s.records[p]; ok {
			continue
		}
		if len(prev) > 0 {
			diff[p] = []check.Offense{}
		}
		delete(s.published, p)
	}
	return diff
}
