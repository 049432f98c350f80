package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/poscheck/pkg/analysis"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/runner"
)

// jsonVersion is bumped when the output shape changes.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	RunID   string           `json:"runId,omitempty"`
	Files   []JSONFileResult `json:"files"`
	Errors  []string         `json:"errors,omitempty"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path     string        `json:"path"`
	Offenses []JSONOffense `json:"offenses"`
	Modified bool          `json:"modified,omitempty"`
}

// JSONOffense represents a single offense. Lines and columns are
// one-based.
type JSONOffense struct {
	Check       string `json:"check"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
	Correctable bool   `json:"correctable"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesInspected    int            `json:"filesInspected"`
	FilesWithOffenses int            `json:"filesWithOffenses"`
	FilesCorrected    int            `json:"filesCorrected"`
	EditsDropped      int            `json:"editsDropped"`
	FixErrors         int            `json:"fixErrors"`
	TotalOffenses     int            `json:"totalOffenses"`
	Correctable       int            `json:"correctable"`
	BySeverity        map[string]int `json:"bySeverity"`
	ExitStatus        int            `json:"exitStatus"`

	ByCheck []analysis.CheckTotals `json:"byCheck"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := buildJSON(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalOffenses, nil
}

func buildJSON(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{
			BySeverity: make(map[string]int),
			ByCheck:    make([]analysis.CheckTotals, 0),
		},
	}

	if result == nil {
		return output
	}

	output.RunID = result.RunID
	for _, e := range result.Errors {
		output.Errors = append(output.Errors, e.Error())
	}

	written := make(map[string]bool, len(result.Written))
	for _, p := range result.Written {
		written[p] = true
	}

	index := make(map[string]int)
	fileFor := func(path string) *JSONFileResult {
		i, ok := index[path]
		if !ok {
			i = len(output.Files)
			index[path] = i
			output.Files = append(output.Files, JSONFileResult{
				Path:     path,
				Offenses: make([]JSONOffense, 0),
				Modified: written[path],
			})
		}
		return &output.Files[i]
	}

	for _, o := range result.Offenses {
		f := fileFor(o.Path())
		f.Offenses = append(f.Offenses, jsonOffense(o))
	}
	// Corrected files with nothing left still show up as modified.
	for _, p := range result.Written {
		fileFor(p)
	}

	stats := result.Stats
	output.Summary.FilesInspected = stats.FilesAnalyzed
	output.Summary.FilesWithOffenses = stats.FilesWithOffenses
	output.Summary.FilesCorrected = stats.FilesCorrected
	output.Summary.EditsDropped = stats.EditsDropped
	output.Summary.FixErrors = stats.FixErrors
	output.Summary.TotalOffenses = len(result.Offenses)
	output.Summary.Correctable = stats.Correctable
	output.Summary.ExitStatus = result.ExitStatus
	for _, o := range result.Offenses {
		output.Summary.BySeverity[string(o.Severity())]++
	}
	output.Summary.ByCheck = analysis.Analyze(result.Offenses, analysis.DefaultOptions()).ByCheck

	return output
}

func jsonOffense(o check.Offense) JSONOffense {
	return JSONOffense{
		Check:       o.Code(),
		Severity:    string(o.Severity()),
		Message:     o.Message(),
		StartLine:   o.Start().Line + 1,
		StartColumn: o.Start().Column + 1,
		EndLine:     o.End().Line + 1,
		EndColumn:   o.End().Column + 1,
		Correctable: o.Correctable(),
	}
}
