package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/analysis"
	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
)

func offense(path, code string, sev check.Severity, correctable bool) check.Offense {
	return check.NewOffense(code, sev, code+" message", check.Location{
		Path:  path,
		Start: ast.Position{},
		End:   ast.Position{Offset: 1, Column: 1},
	}, correctable)
}

func sample() []check.Offense {
	return []check.Offense{
		offense("a.liquid", "SpaceInsideBraces", check.SeverityStyle, true),
		offense("a.liquid", "SpaceInsideBraces", check.SeverityStyle, true),
		offense("b.liquid", "SpaceInsideBraces", check.SeverityStyle, true),
		offense("b.liquid", "MissingTemplate", check.SeverityError, false),
		offense("c.liquid", "UnusedAssign", check.SeveritySuggestion, true),
	}
}

func codes(r *analysis.Report) []string {
	out := make([]string, 0, len(r.ByCheck))
	for _, ct := range r.ByCheck {
		out = append(out, ct.Code)
	}
	return out
}

func TestAnalyzeByCheck(t *testing.T) {
	t.Parallel()

	r := analysis.Analyze(sample(), analysis.DefaultOptions())

	require.Len(t, r.ByCheck, 3)
	first := r.ByCheck[0]
	assert.Equal(t, "SpaceInsideBraces", first.Code)
	assert.Equal(t, 3, first.Offenses)
	assert.Equal(t, 3, first.Correctable)
	assert.Equal(t, []string{"a.liquid", "b.liquid"}, first.Files)
	assert.Equal(t, 3, first.BySeverity[check.SeverityStyle])

	assert.Equal(t, []string{"SpaceInsideBraces", "MissingTemplate", "UnusedAssign"}, codes(r),
		"ties on count fall back to code order")
}

func TestAnalyzeByFile(t *testing.T) {
	t.Parallel()

	r := analysis.Analyze(sample(), analysis.Options{SortBy: analysis.SortByAlpha})

	require.Len(t, r.ByFile, 3)
	assert.Equal(t, "a.liquid", r.ByFile[0].Path)
	b := r.ByFile[1]
	assert.Equal(t, "b.liquid", b.Path)
	assert.Equal(t, 2, b.Offenses)
	assert.Equal(t, []string{"MissingTemplate", "SpaceInsideBraces"}, b.Checks)
	assert.Equal(t, 1, b.BySeverity[check.SeverityError])
}

func TestAnalyzeSortOrders(t *testing.T) {
	t.Parallel()

	bySeverity := analysis.Analyze(sample(), analysis.Options{SortBy: analysis.SortBySeverity})
	assert.Equal(t, []string{"MissingTemplate", "UnusedAssign", "SpaceInsideBraces"}, codes(bySeverity))

	ascending := analysis.Analyze(sample(), analysis.Options{SortBy: analysis.SortByCount})
	assert.Equal(t, []string{"MissingTemplate", "UnusedAssign", "SpaceInsideBraces"}, codes(ascending))

	alpha := analysis.Analyze(sample(), analysis.Options{SortBy: analysis.SortByAlpha})
	assert.Equal(t, []string{"MissingTemplate", "SpaceInsideBraces", "UnusedAssign"}, codes(alpha))
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	r := analysis.Analyze(nil, analysis.DefaultOptions())
	assert.Empty(t, r.ByCheck)
	assert.Empty(t, r.ByFile)
}

func TestSortFieldIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, analysis.SortByCount.IsValid())
	assert.True(t, analysis.SortBySeverity.IsValid())
	assert.False(t, analysis.SortField("size").IsValid())
}
