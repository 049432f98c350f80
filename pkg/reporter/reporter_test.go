package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/checks"
	"github.com/yaklabco/poscheck/pkg/config"
	"github.com/yaklabco/poscheck/pkg/reporter"
	"github.com/yaklabco/poscheck/pkg/runner"
	"github.com/yaklabco/poscheck/pkg/storage"
)

const page = "app/views/pages/index.liquid"

func result(t *testing.T, files map[string]string, cfg *config.Config) *runner.Result {
	t.Helper()
	reg := check.NewRegistry()
	checks.RegisterAll(reg)
	res, err := runner.Run(context.Background(), runner.Options{
		Storage:  storage.NewInMemory(files),
		Registry: reg,
		Config:   cfg,
	})
	require.NoError(t, err)
	return res
}

func report(t *testing.T, opts reporter.Options, res *runner.Result) (string, int) {
	t.Helper()
	var buf bytes.Buffer
	opts.Writer = &buf
	opts.Color = "never"
	rep, err := reporter.New(opts)
	require.NoError(t, err)
	n, err := rep.Report(context.Background(), res)
	require.NoError(t, err)
	return buf.String(), n
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "json", want: reporter.FormatJSON},
		{input: "diff", want: reporter.FormatDiff},
		{input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := reporter.New(reporter.Options{Format: "xml", Writer: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestTextReporterGroupsByFile(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{page: "{{a}}\n"}, nil)
	out, n := report(t, reporter.DefaultOptions(), res)

	assert.Equal(t, 2, n)
	assert.Contains(t, out, page+" (2 offenses)")
	assert.Contains(t, out, page+":1:3")
	assert.Contains(t, out, page+":1:4")
	assert.Contains(t, out, "Space missing after '{{'")
	assert.Contains(t, out, "(SpaceInsideBraces)")
	assert.Contains(t, out, "        {{a}}\n          ^\n")
	assert.Contains(t, out, "2 offenses (2 style) in 1 file, 2 correctable")
}

func TestTextReporterFlatWithoutContext(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{page: "{{a}}\n"}, nil)
	out, _ := report(t, reporter.Options{Format: reporter.FormatText}, res)

	assert.NotContains(t, out, "(2 offenses)")
	assert.NotContains(t, out, "^")
	assert.NotContains(t, out, "correctable,")
	assert.Equal(t, 2, strings.Count(out, "(SpaceInsideBraces)"))
}

func TestTextReporterClean(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{page: "{{ a }}\n"}, nil)
	out, n := report(t, reporter.DefaultOptions(), res)

	assert.Zero(t, n)
	assert.Equal(t, "No offenses found (1 files inspected)\n", out)
}

func TestTextReporterPrintsRunErrors(t *testing.T) {
	t.Parallel()

	res := &runner.Result{Errors: []error{errors.New("write failed")}}
	out, _ := report(t, reporter.Options{Format: reporter.FormatText}, res)

	assert.Contains(t, out, "error: write failed")
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{page: "{{a}}\n"}, nil)
	out, n := report(t, reporter.Options{Format: reporter.FormatJSON, Compact: true}, res)
	assert.Equal(t, 2, n)

	var got reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "1.0.0", got.Version)
	assert.Equal(t, res.RunID, got.RunID)
	require.Len(t, got.Files, 1)
	assert.Equal(t, page, got.Files[0].Path)
	require.Len(t, got.Files[0].Offenses, 2)

	first := got.Files[0].Offenses[0]
	assert.Equal(t, "SpaceInsideBraces", first.Check)
	assert.Equal(t, "style", first.Severity)
	assert.Equal(t, 1, first.StartLine)
	assert.Equal(t, 3, first.StartColumn)
	assert.True(t, first.Correctable)

	assert.Equal(t, 2, got.Summary.TotalOffenses)
	assert.Equal(t, 2, got.Summary.BySeverity["style"])
	assert.Equal(t, runner.ExitOffenses, got.Summary.ExitStatus)
}

func TestJSONReporterEmpty(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatJSON}, nil)
	assert.Zero(t, n)
	assert.Contains(t, out, `"files": []`)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Fix = true
	cfg.DryRun = true
	res := result(t, map[string]string{page: "{{a}}\n", "app/views/pages/ok.liquid": "{{ b }}\n"}, cfg)

	out, n := report(t, reporter.Options{Format: reporter.FormatDiff, ShowSummary: true}, res)

	assert.Equal(t, 1, n)
	assert.Contains(t, out, "diff --git a/"+page+" b/"+page+"\n")
	assert.Contains(t, out, "--- a/"+page+"\n")
	assert.Contains(t, out, "+++ b/"+page+"\n")
	assert.Contains(t, out, "\n-{{a}}\n")
	assert.Contains(t, out, "\n+{{ a }}\n")
	assert.NotContains(t, out, "ok.liquid")
	assert.Contains(t, out, "1 file changed, 1 insertion(+), 1 deletion(-)")
}

func TestDiffReporterWithoutCorrections(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{page: "{{a}}\n"}, nil)
	out, n := report(t, reporter.Options{Format: reporter.FormatDiff, ShowSummary: true}, res)

	assert.Zero(t, n)
	assert.Empty(t, out)
}

func TestTextReporterByCheck(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{
		page:                             "{{a}}\n{% include 'card' %}\n",
		"app/views/partials/card.liquid": "card\n",
	}, nil)
	out, _ := report(t, reporter.Options{Format: reporter.FormatText, ByCheck: true}, res)

	assert.Contains(t, out, "By check\n")
	assert.Contains(t, out, "  SpaceInsideBraces  2 in 1 file, 2 correctable\n")
	assert.Contains(t, out, "  DeprecatedTag      1 in 1 file, 1 correctable\n")
	assert.Less(t, strings.Index(out, "SpaceInsideBraces  2"), strings.Index(out, "DeprecatedTag      1"))
}

func TestJSONReporterByCheck(t *testing.T) {
	t.Parallel()

	res := result(t, map[string]string{page: "{{a}}\n"}, nil)
	out, _ := report(t, reporter.Options{Format: reporter.FormatJSON}, res)

	var got reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Summary.ByCheck, 1)
	assert.Equal(t, "SpaceInsideBraces", got.Summary.ByCheck[0].Code)
	assert.Equal(t, 2, got.Summary.ByCheck[0].Offenses)
	assert.Equal(t, []string{page}, got.Summary.ByCheck[0].Files)
}
