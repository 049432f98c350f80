package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/poscheck/internal/ui/pretty"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/runner"
)

func TestFormatSummary_Basic(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	got := styles.FormatSummary(runner.Stats{
		FilesAnalyzed:     10,
		FilesWithOffenses: 3,
		Offenses:          15,
		BySeverity:        map[check.Severity]int{check.SeverityError: 5, check.SeveritySuggestion: 10},
	})

	assert.Contains(t, got, "Summary")
	assert.Contains(t, got, "Files inspected:      10")
	assert.Contains(t, got, "Files with offenses:  3")
	assert.Contains(t, got, "Total offenses:       15")
	assert.Contains(t, got, "Errors:             5")
	assert.Contains(t, got, "Suggestions:        10")
	assert.NotContains(t, got, "Style:")
	assert.Contains(t, got, "Check failed with errors")
}

func TestFormatSummary_Clean(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	got := styles.FormatSummary(runner.Stats{FilesAnalyzed: 5, FilesCorrected: 2})

	assert.Contains(t, got, "Files corrected:      2")
	assert.NotContains(t, got, "Files with offenses")
	assert.NotContains(t, got, "Edits dropped")
	assert.Contains(t, got, "Check passed")
}

func TestFormatSummary_UnappliedFixes(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	got := styles.FormatSummary(runner.Stats{FilesAnalyzed: 1, EditsDropped: 2, FixErrors: 1})

	assert.Contains(t, got, "Edits dropped:        2")
	assert.Contains(t, got, "Fixes failed:         1")
}

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "clean",
			stats: runner.Stats{FilesAnalyzed: 4},
			want:  "No offenses found (4 files inspected)\n",
		},
		{
			name:  "clean after correction",
			stats: runner.Stats{FilesAnalyzed: 4, FilesCorrected: 1, EditsApplied: 3},
			want:  "No offenses found (4 files inspected), 3 corrected in 1 file\n",
		},
		{
			name: "offenses",
			stats: runner.Stats{
				FilesWithOffenses: 1,
				Offenses:          2,
				Correctable:       2,
				BySeverity:        map[check.Severity]int{check.SeverityStyle: 2},
			},
			want: "2 offenses (2 style) in 1 file, 2 correctable\n",
		},
		{
			name: "single error",
			stats: runner.Stats{
				FilesWithOffenses: 1,
				Offenses:          1,
				BySeverity:        map[check.Severity]int{check.SeverityError: 1},
			},
			want: "1 offense (1 error) in 1 file\n",
		},
		{
			name: "dropped edits and failed fixes",
			stats: runner.Stats{
				FilesAnalyzed:  2,
				FilesCorrected: 1,
				EditsApplied:   1,
				EditsDropped:   2,
				FixErrors:      1,
			},
			want: "No offenses found (2 files inspected), 1 corrected in 1 file, 2 edits dropped, 1 fix failed\n",
		},
		{
			name: "offenses with a dropped edit",
			stats: runner.Stats{
				FilesWithOffenses: 2,
				Offenses:          3,
				BySeverity:        map[check.Severity]int{check.SeverityError: 1, check.SeverityStyle: 2},
				EditsDropped:      1,
			},
			want: "3 offenses (1 error, 2 style) in 2 files, 1 edit dropped\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}
