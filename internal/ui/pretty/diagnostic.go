package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/poscheck/pkg/check"
)

// FormatOffense formats a single offense for terminal output. Line and
// column are shown one-based.
func (s *Styles) FormatOffense(o check.Offense, showContext bool, sourceLine string) string {
	var builder strings.Builder

	start := o.Start()
	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(o.Path()), start.Line+1, start.Column+1)

	fmt.Fprintf(&builder, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(o.Severity()),
		s.Message.Render(o.Message()),
		s.CheckCode.Render("("+o.Code()+")"),
	)

	if showContext && sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, start.Column+1))
	}

	if o.Correctable() {
		builder.WriteString("    " + s.Correctable.Render("correctable with --fix") + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev check.Severity) string {
	switch sev {
	case check.SeverityError:
		return s.Error.Render("error")
	case check.SeveritySuggestion:
		return s.Suggestion.Render("suggestion")
	case check.SeverityStyle:
		return s.Style.Render("style")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret under the
// one-based column.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, count int) string {
	header := s.FilePath.Render(path)
	switch {
	case count == 1:
		header += s.Dim.Render(" (1 offense)")
	case count > 1:
		header += s.Dim.Render(fmt.Sprintf(" (%d offenses)", count))
	}
	return header
}
