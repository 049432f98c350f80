package session_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/analyzer"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/session"
)

func offense(path string, version int, code, msg string) check.Offense {
	return check.NewOffense(code, check.SeverityError, msg, check.Location{
		Path:    path,
		Version: version,
		Start:   ast.Position{Line: 1, Column: 2, Offset: 10},
		End:     ast.Position{Line: 1, Column: 6, Offset: 14},
	}, false)
}

func TestRecordDiscardsStaleVersions(t *testing.T) {
	t.Parallel()

	s := session.New()
	const path = "app/views/pages/a.liquid"

	assert.True(t, s.Record(path, 3, []check.Offense{offense(path, 3, "A", "three")}))
	assert.False(t, s.Record(path, 2, []check.Offense{offense(path, 2, "A", "two")}))

	entry, ok := s.Entry(path)
	require.True(t, ok)
	assert.Equal(t, 3, entry.Version)
	require.Len(t, entry.Offenses, 1)
	assert.Equal(t, "three", entry.Offenses[0].Message())

	diff := s.DiffSinceLastPublish()
	require.Contains(t, diff, path)
	assert.Equal(t, "three", diff[path][0].Message())

	assert.True(t, s.Record(path, 3, nil), "the same version may be recorded again")
}

func TestForgetRejectsResultsFromBeforeRemoval(t *testing.T) {
	t.Parallel()

	s := session.New()
	const path = "app/views/pages/a.liquid"

	require.True(t, s.Record(path, 5, []check.Offense{offense(path, 5, "X", "current")}))
	require.Contains(t, s.DiffSinceLastPublish(), path)

	s.Forget(path)
	assert.Equal(t, 5, s.Forgotten(path))
	assert.False(t, s.Record(path, 3, []check.Offense{offense(path, 3, "X", "old")}))
	assert.False(t, s.Record(path, 5, []check.Offense{offense(path, 5, "X", "late")}))

	diff := s.DiffSinceLastPublish()
	require.Contains(t, diff, path)
	assert.Empty(t, diff[path], "the removal clears published diagnostics")
	_, ok := s.Entry(path)
	assert.False(t, ok)

	assert.True(t, s.Record(path, 6, []check.Offense{offense(path, 6, "X", "recreated")}))
	assert.Equal(t, 0, s.Forgotten(path))
}

func TestForgetAtCoversUnrecordedVersions(t *testing.T) {
	t.Parallel()

	s := session.New()
	const path = "app/views/pages/a.liquid"

	s.ForgetAt(path, 2)
	assert.False(t, s.Record(path, 2, []check.Offense{offense(path, 2, "X", "late")}))

	res := &analyzer.Result{
		Paths:      []string{path},
		Versions:   map[string]int{path: 1},
		SingleFile: []check.Offense{offense(path, 1, "X", "older run")},
	}
	assert.Equal(t, 0, s.RecordRun(res))
	assert.Empty(t, s.DiffSinceLastPublish())
}

func TestDiffSinceLastPublish(t *testing.T) {
	t.Parallel()

	s := session.New()
	a, b := "app/views/pages/a.liquid", "app/views/pages/b.liquid"

	s.Record(a, 1, []check.Offense{offense(a, 1, "A", "m")})
	s.Record(b, 1, nil)

	first := s.DiffSinceLastPublish()
	assert.Len(t, first, 1, "a clean path that was never published is not reported")
	assert.Contains(t, first, a)

	assert.Empty(t, s.DiffSinceLastPublish(), "nothing changed since the last publish")

	s.Record(a, 2, []check.Offense{offense(a, 2, "A", "m")})
	second := s.DiffSinceLastPublish()
	assert.Contains(t, second, a, "a new version changes the offenses")

	s.Record(a, 3, nil)
	third := s.DiffSinceLastPublish()
	require.Contains(t, third, a)
	assert.Empty(t, third[a])

	s.Record(b, 2, []check.Offense{offense(b, 2, "B", "m")})
	s.DiffSinceLastPublish()
	s.Forget(b)
	_, ok := s.Entry(b)
	assert.False(t, ok)
	fourth := s.DiffSinceLastPublish()
	require.Contains(t, fourth, b)
	assert.Empty(t, fourth[b])
	assert.Empty(t, s.DiffSinceLastPublish())
}

func TestRecordRunKeepsProjectOffensesForSingleFileRuns(t *testing.T) {
	t.Parallel()

	s := session.New()
	a, b := "app/views/pages/a.liquid", "app/views/partials/b.liquid"

	project := &analyzer.Result{
		Paths:        []string{a, b},
		Versions:     map[string]int{a: 1, b: 1},
		SingleFile:   []check.Offense{offense(a, 1, "Single", "s")},
		WholeProject: []check.Offense{offense(b, 1, "Unused", "u")},
		ProjectPass:  true,
	}
	assert.Equal(t, 2, s.RecordRun(project))

	single := &analyzer.Result{
		Paths:    []string{a, b},
		Versions: map[string]int{a: 2, b: 1},
	}
	s.RecordRun(single)

	entryA, _ := s.Entry(a)
	assert.Equal(t, 2, entryA.Version)
	assert.Empty(t, entryA.Offenses, "a clean run clears the file")

	entryB, _ := s.Entry(b)
	require.Len(t, entryB.Offenses, 1, "whole-project offenses survive a single-file run at the same version")
	assert.Equal(t, "Unused", entryB.Offenses[0].Code())

	again := &analyzer.Result{
		Paths:       []string{a},
		Versions:    map[string]int{a: 2},
		ProjectPass: true,
	}
	s.RecordRun(again)
	entryB, _ = s.Entry(b)
	assert.Empty(t, entryB.Offenses, "a later whole-project pass replaces project offenses everywhere")
}

func TestRecordRunIgnoresStaleResults(t *testing.T) {
	t.Parallel()

	s := session.New()
	const path = "app/views/pages/a.liquid"

	s.RecordRun(&analyzer.Result{
		Paths:      []string{path},
		Versions:   map[string]int{path: 3},
		SingleFile: []check.Offense{offense(path, 3, "A", "new")},
	})
	updated := s.RecordRun(&analyzer.Result{
		Paths:      []string{path},
		Versions:   map[string]int{path: 2},
		SingleFile: []check.Offense{offense(path, 2, "A", "old")},
	})
	assert.Zero(t, updated)

	entry, _ := s.Entry(path)
	assert.Equal(t, 3, entry.Version)
	assert.Equal(t, "new", entry.Offenses[0].Message())
}

func TestPublish(t *testing.T) {
	t.Parallel()

	o := offense("a.liquid", 1, "MissingTemplate", "missing").WithSeverity(check.SeveritySuggestion)
	diags := session.Publish([]check.Offense{o})
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, session.Range{
		Start: session.Position{Line: 1, Character: 2},
		End:   session.Position{Line: 1, Character: 6},
	}, d.Range)
	assert.Equal(t, session.SeverityWarning, d.Severity)
	assert.Equal(t, "MissingTemplate", d.Code)
	assert.Equal(t, session.Source, d.Source)
	assert.Equal(t, "missing", d.Message)

	huge := check.NewOffense("X", check.SeverityStyle, "m", check.Location{
		Start: ast.Position{Line: -1, Column: math.MaxInt},
	}, false)
	out := session.Publish([]check.Offense{huge})
	assert.Equal(t, session.Position{}, out[0].Range.Start)
	assert.Equal(t, session.SeverityInformation, out[0].Severity)
}
