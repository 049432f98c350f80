package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
)

// Conflict records an edit dropped because it overlaps one registered
// before it.
type Conflict struct {
	Dropped TextEdit
	Kept    TextEdit
}

func (c Conflict) String() string {
	return fmt.Sprintf("edit %s dropped: overlaps %s", c.Dropped, c.Kept)
}

// Outcome is the result of applying a Corrector.
type Outcome struct {
	// Content is the new file content in its stored form.
	Content string

	// Changed is set when Content differs from the original bytes.
	Changed bool

	Applied   []TextEdit
	Conflicts []Conflict
}

// Corrector owns the edits for one file during one correction pass.
// Offsets index the file's LF-normalized Source.
type Corrector struct {
	file    *ast.File
	check   string
	edits   []TextEdit
	invalid []error

	// seq numbers every Replace call, valid or not.
	seq int
}

// NewCorrector returns an empty corrector for f.
func NewCorrector(f *ast.File) *Corrector {
	return &Corrector{file: f}
}

// File returns the file being corrected.
func (c *Corrector) File() *ast.File {
	return c.file
}

// Source returns the LF-normalized content edits apply to.
func (c *Corrector) Source() string {
	return c.file.Source
}

// SetCheck attributes the following edits to the check with code.
func (c *Corrector) SetCheck(code string) {
	c.check = code
}

// Replace replaces [start, end) with text.
func (c *Corrector) Replace(start, end int, text string) {
	edit := TextEdit{Start: start, End: end, NewText: text, Check: c.check, Seq: c.seq}
	c.seq++
	if err := validate(edit, len(c.file.Source)); err != nil {
		c.invalid = append(c.invalid, err)
		return
	}
	c.edits = append(c.edits, edit)
}

// Insert inserts text at offset.
func (c *Corrector) Insert(offset int, text string) {
	c.Replace(offset, offset, text)
}

// Remove deletes [start, end).
func (c *Corrector) Remove(start, end int) {
	c.Replace(start, end, "")
}

// ReplaceNode replaces the whole span of n.
func (c *Corrector) ReplaceNode(n Spanned, text string) {
	s := n.Span()
	c.Replace(s.Start, s.End, text)
}

// InsertBefore inserts text at the start of n.
func (c *Corrector) InsertBefore(n Spanned, text string) {
	c.Insert(n.Span().Start, text)
}

// InsertAfter inserts text at the end of n.
func (c *Corrector) InsertAfter(n Spanned, text string) {
	c.Insert(n.Span().End, text)
}

// Edits returns the valid edits in registration order.
func (c *Corrector) Edits() []TextEdit {
	return slices.Clone(c.edits)
}

// Pending reports whether any valid edit was registered.
func (c *Corrector) Pending() bool {
	return len(c.edits) > 0
}

// TakeErrors returns and clears the validation errors recorded so far.
func (c *Corrector) TakeErrors() []error {
	errs := c.invalid
	c.invalid = nil
	return errs
}

// Apply builds the corrected content. Edits are accepted in registration
// order; an edit overlapping an accepted one is dropped and reported as a
// Conflict, and an exact duplicate of an accepted edit is skipped. Accepted
// edits are spliced from the end of the source backwards so every recorded
// offset stays valid, then line breaks are re-encoded to the file's style.
//
// original is the stored content; Changed is false when the result is
// byte-identical to it. Apply also returns the validation errors recorded
// by Replace, next to an Outcome built from the valid edits.
func (c *Corrector) Apply(original string) (Outcome, error) {
	var out Outcome

	for _, edit := range c.edits {
		prev, state := collide(out.Applied, edit)
		switch state {
		case collisionNone:
			out.Applied = append(out.Applied, edit)
		case collisionOverlap:
			out.Conflicts = append(out.Conflicts, Conflict{Dropped: edit, Kept: prev})
		}
	}

	out.Content = original
	if len(out.Applied) > 0 {
		out.Content = c.file.Encode(splice(c.file.Source, out.Applied))
	}
	out.Changed = out.Content != original

	return out, errors.Join(c.invalid...)
}

type collision int

const (
	collisionNone collision = iota
	collisionDuplicate
	collisionOverlap
)

// collide finds the first accepted edit that edit collides with.
func collide(applied []TextEdit, edit TextEdit) (TextEdit, collision) {
	for _, prev := range applied {
		if sameEdit(prev, edit) {
			return prev, collisionDuplicate
		}
		if overlaps(prev, edit) {
			return prev, collisionOverlap
		}
	}
	return TextEdit{}, collisionNone
}

// splice applies non-overlapping edits right to left: by start descending,
// then end descending, then registration descending, so insertions at one
// offset keep their registration order.
func splice(source string, edits []TextEdit) string {
	if len(edits) == 0 {
		return source
	}

	ordered := slices.Clone(edits)
	slices.SortFunc(ordered, func(a, b TextEdit) int {
		if d := cmp.Compare(b.Start, a.Start); d != 0 {
			return d
		}
		if d := cmp.Compare(b.End, a.End); d != 0 {
			return d
		}
		return cmp.Compare(b.Seq, a.Seq)
	})

	out := source
	for _, e := range ordered {
		var b strings.Builder
		b.Grow(len(out) - (e.End - e.Start) + len(e.NewText))
		b.WriteString(out[:e.Start])
		b.WriteString(e.NewText)
		b.WriteString(out[e.End:])
		out = b.String()
	}
	return out
}
