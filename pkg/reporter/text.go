package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/poscheck/internal/ui/pretty"
	"github.com/yaklabco/poscheck/pkg/analysis"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	if r.opts.GroupByFile {
		r.reportGrouped(result)
	} else {
		for _, o := range result.Offenses {
			r.writeOffense(result, o)
		}
	}

	if r.opts.ByCheck && len(result.Offenses) > 0 {
		r.reportByCheck(result)
	}

	for _, e := range result.Errors {
		fmt.Fprintln(r.bw, r.styles.Error.Render(fmt.Sprintf("error: %v", e)))
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return len(result.Offenses), nil
}

// reportGrouped writes offenses under a header per file. Offenses arrive
// sorted by path.
func (r *TextReporter) reportGrouped(result *runner.Result) {
	offenses := result.Offenses
	for len(offenses) > 0 {
		path := offenses[0].Path()
		n := 1
		for n < len(offenses) && offenses[n].Path() == path {
			n++
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, n))
		for _, o := range offenses[:n] {
			r.writeOffense(result, o)
		}
		fmt.Fprintln(r.bw)

		offenses = offenses[n:]
	}
}

// reportByCheck writes one line per check, most offenses first.
func (r *TextReporter) reportByCheck(result *runner.Result) {
	report := analysis.Analyze(result.Offenses, analysis.DefaultOptions())

	width := 0
	for _, ct := range report.ByCheck {
		width = max(width, len(ct.Code))
	}

	fmt.Fprintln(r.bw, r.styles.SummaryTitle.Render("By check"))
	for _, ct := range report.ByCheck {
		line := fmt.Sprintf("  %-*s  %d in %d %s", width, ct.Code, ct.Offenses, len(ct.Files), plural(len(ct.Files), "file", "files"))
		if ct.Correctable > 0 {
			line += r.styles.Dim.Render(fmt.Sprintf(", %d correctable", ct.Correctable))
		}
		fmt.Fprintln(r.bw, line)
	}
	fmt.Fprintln(r.bw)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (r *TextReporter) writeOffense(result *runner.Result, o check.Offense) {
	var sourceLine string
	if r.opts.ShowContext {
		sourceLine = result.SourceLine(o.Path(), o.Start().Line)
	}
	fmt.Fprint(r.bw, r.styles.FormatOffense(o, r.opts.ShowContext, sourceLine))
}
