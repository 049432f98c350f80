package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "12 offenses (8 errors, 4 suggestions) in 3 files, 6 correctable".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.Offenses == 0 {
		msg := s.Success.Render("No offenses found") + s.Dim.Render(fmt.Sprintf(" (%d files inspected)", stats.FilesAnalyzed))
		if stats.FilesCorrected > 0 {
			msg += ", " + s.Success.Render(fmt.Sprintf("%d corrected in %d %s",
				stats.EditsApplied, stats.FilesCorrected, plural(stats.FilesCorrected, wordFile, wordFiles)))
		}
		for _, note := range s.fixNotes(stats) {
			msg += ", " + note
		}
		return msg + "\n"
	}

	var parts []string

	var severityParts []string
	if n := stats.BySeverity[check.SeverityError]; n > 0 {
		severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d %s", n, plural(n, "error", "errors"))))
	}
	if n := stats.BySeverity[check.SeveritySuggestion]; n > 0 {
		severityParts = append(severityParts, s.Suggestion.Render(fmt.Sprintf("%d %s", n, plural(n, "suggestion", "suggestions"))))
	}
	if n := stats.BySeverity[check.SeverityStyle]; n > 0 {
		severityParts = append(severityParts, s.Style.Render(fmt.Sprintf("%d style", n)))
	}

	total := fmt.Sprintf("%d %s", stats.Offenses, plural(stats.Offenses, "offense", "offenses"))
	if len(severityParts) > 0 {
		total += " (" + strings.Join(severityParts, ", ") + ")"
	}
	total += fmt.Sprintf(" in %d %s", stats.FilesWithOffenses, plural(stats.FilesWithOffenses, wordFile, wordFiles))
	parts = append(parts, total)

	if stats.Correctable > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d correctable", stats.Correctable)))
	}

	if stats.FilesCorrected > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d corrected in %d %s",
			stats.EditsApplied, stats.FilesCorrected, plural(stats.FilesCorrected, wordFile, wordFiles))))
	}
	parts = append(parts, s.fixNotes(stats)...)

	return strings.Join(parts, ", ") + "\n"
}

// fixNotes describes corrections that did not go through.
func (s *Styles) fixNotes(stats runner.Stats) []string {
	var notes []string
	if n := stats.EditsDropped; n > 0 {
		notes = append(notes, s.Suggestion.Render(fmt.Sprintf("%d %s dropped", n, plural(n, "edit", "edits"))))
	}
	if n := stats.FixErrors; n > 0 {
		notes = append(notes, s.Failure.Render(fmt.Sprintf("%d %s failed", n, plural(n, "fix", "fixes"))))
	}
	return notes
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files inspected:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesAnalyzed)) + "\n")

	if stats.FilesWithOffenses > 0 {
		builder.WriteString("  Files with offenses:  " +
			s.Failure.Render(strconv.Itoa(stats.FilesWithOffenses)) + "\n")
	}

	if stats.FilesCorrected > 0 {
		builder.WriteString("  Files corrected:      " +
			s.Success.Render(strconv.Itoa(stats.FilesCorrected)) + "\n")
	}

	if stats.FilesSkipped > 0 {
		builder.WriteString("  Files skipped:        " +
			s.Dim.Render(strconv.Itoa(stats.FilesSkipped)) + "\n")
	}

	if stats.EditsDropped > 0 {
		builder.WriteString("  Edits dropped:        " +
			s.Suggestion.Render(strconv.Itoa(stats.EditsDropped)) + "\n")
	}

	if stats.FixErrors > 0 {
		builder.WriteString("  Fixes failed:         " +
			s.Failure.Render(strconv.Itoa(stats.FixErrors)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total offenses:       " +
		s.SummaryValue.Render(strconv.Itoa(stats.Offenses)) + "\n")

	if n := stats.BySeverity[check.SeverityError]; n > 0 {
		builder.WriteString("    Errors:             " + s.Error.Render(strconv.Itoa(n)) + "\n")
	}
	if n := stats.BySeverity[check.SeveritySuggestion]; n > 0 {
		builder.WriteString("    Suggestions:        " + s.Suggestion.Render(strconv.Itoa(n)) + "\n")
	}
	if n := stats.BySeverity[check.SeverityStyle]; n > 0 {
		builder.WriteString("    Style:              " + s.Style.Render(strconv.Itoa(n)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.BySeverity[check.SeverityError] > 0:
		builder.WriteString(s.Failure.Render("Check failed with errors"))
	case stats.Offenses > 0:
		builder.WriteString(s.Suggestion.Render("Check completed with offenses"))
	default:
		builder.WriteString(s.Success.Render("Check passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
