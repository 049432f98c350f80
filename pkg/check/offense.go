package check

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/yaklabco/poscheck/pkg/ast"
)

// Location is where an offense applies.
type Location struct {
	Path    string
	Version int
	Start   ast.Position
	End     ast.Position
}

// Offense is an immutable diagnostic. Values are compared structurally.
type Offense struct {
	code        string
	severity    Severity
	message     string
	loc         Location
	correctable bool
}

// NewOffense builds an offense. Every field is copied.
func NewOffense(code string, severity Severity, message string, loc Location, correctable bool) Offense {
	return Offense{
		code:        code,
		severity:    severity,
		message:     message,
		loc:         loc,
		correctable: correctable,
	}
}

func (o Offense) Code() string { return o.code }
func (o Offense) Severity() Severity { return o.severity }
func (o Offense) Message() string { return o.message }
func (o Offense) Path() string { return o.loc.Path }
func (o Offense) Version() int { return o.loc.Version }
func (o Offense) Start() ast.Position { return o.loc.Start }
func (o Offense) End() ast.Position { return o.loc.End }
func (o Offense) Location() Location { return o.loc }
func (o Offense) Correctable() bool { return o.correctable }

// WithSeverity returns a copy with a different severity.
func (o Offense) WithSeverity(s Severity) Offense {
	o.severity = s
	return o
}

// String renders "path:line:col: message [Code]" with one-based line and
// column.
func (o Offense) String() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s]", o.loc.Path, o.loc.Start.Line+1, o.loc.Start.Column+1, o.message, o.code)
}

// Equal reports structural equality.
func (o Offense) Equal(other Offense) bool {
	return o == other
}

// Compare orders offenses by path, start position and message, then by the
// remaining fields so the order is total.
func Compare(a, b Offense) int {
	return cmp.Or(
		cmp.Compare(a.loc.Path, b.loc.Path),
		cmp.Compare(a.loc.Start.Line, b.loc.Start.Line),
		cmp.Compare(a.loc.Start.Column, b.loc.Start.Column),
		cmp.Compare(a.message, b.message),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.loc.End.Offset, b.loc.End.Offset),
		cmp.Compare(a.severity.Rank(), b.severity.Rank()),
		cmp.Compare(a.loc.Version, b.loc.Version),
		compareBool(a.correctable, b.correctable),
	)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Sort orders offenses in place.
func Sort(offenses []Offense) {
	slices.SortFunc(offenses, Compare)
}

// Sorted returns a sorted copy.
func Sorted(offenses []Offense) []Offense {
	out := slices.Clone(offenses)
	Sort(out)
	return out
}
