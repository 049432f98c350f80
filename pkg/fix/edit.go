// Package fix accumulates text edits for one file and applies them without
// corrupting it.
package fix

import (
	"errors"
	"fmt"

	"github.com/yaklabco/poscheck/pkg/ast"
)

// ErrInvalidEdit is matched by every *ValidationError.
var ErrInvalidEdit = errors.New("invalid edit")

// TextEdit replaces the half-open byte range [Start, End) of the
// LF-normalized source with NewText.
type TextEdit struct {
	Start   int
	End     int
	NewText string

	// Check is the code of the check that registered the edit.
	Check string

	// Seq is the registration order within one Corrector.
	Seq int
}

// IsInsertion reports whether the edit replaces nothing.
func (e TextEdit) IsInsertion() bool {
	return e.Start == e.End
}

func (e TextEdit) String() string {
	return fmt.Sprintf("[%d:%d]%q by %s", e.Start, e.End, e.NewText, e.Check)
}

// overlaps reports whether two edits cannot both be applied. Two insertions
// never overlap. An insertion overlaps a replacement only when it falls
// strictly inside the replaced range.
func overlaps(a, b TextEdit) bool {
	switch {
	case a.IsInsertion() && b.IsInsertion():
		return false
	case a.IsInsertion():
		return b.Start < a.Start && a.Start < b.End
	case b.IsInsertion():
		return a.Start < b.Start && b.Start < a.End
	default:
		return a.Start < b.End && b.Start < a.End
	}
}

func sameEdit(a, b TextEdit) bool {
	return a.Start == b.Start && a.End == b.End && a.NewText == b.NewText
}

// ValidationError describes an edit whose range does not fit the source.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d] from %s: %s", e.Edit.Start, e.Edit.End, e.Edit.Check, e.Message)
}

// Is makes errors.Is(err, ErrInvalidEdit) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEdit
}

func validate(edit TextEdit, sourceLen int) error {
	switch {
	case edit.Start < 0:
		return &ValidationError{Edit: edit, Message: "start offset is negative"}
	case edit.End < edit.Start:
		return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
	case edit.End > sourceLen:
		return &ValidationError{
			Edit:    edit,
			Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.End, sourceLen),
		}
	}
	return nil
}

// Spanned is anything with a source span, typically an *ast.Node.
type Spanned interface {
	Span() ast.Span
}
