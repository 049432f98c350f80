package session

import (
	"fortio.org/safecast"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/check"
)

// Source names the producer of published diagnostics.
const Source = "poscheck"

// Position is a zero-based line and character.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is a half-open range of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Severity follows the editor protocol numbering.
type Severity int

// Severities.
const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// Diagnostic is the published shape of an offense.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

// Publish converts offenses into diagnostics, keeping their order.
func Publish(offenses []check.Offense) []Diagnostic {
	out := make([]Diagnostic, 0, len(offenses))
	for _, o := range offenses {
		out = append(out, Diagnostic{
			Range:    Range{Start: position(o.Start()), End: position(o.End())},
			Severity: severity(o.Severity()),
			Code:     o.Code(),
			Source:   Source,
			Message:  o.Message(),
		})
	}
	return out
}

func position(p ast.Position) Position {
	return Position{Line: toUint32(p.Line), Character: toUint32(p.Column)}
}

func toUint32(v int) uint32 {
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0
	}
	return n
}

func severity(s check.Severity) Severity {
	switch s {
	case check.SeverityError:
		return SeverityError
	case check.SeveritySuggestion:
		return SeverityWarning
	default:
		return SeverityInformation
	}
}
