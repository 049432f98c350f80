// Package check defines the contract between rule plugins and the analyzer.
//
// A check always implements Check. What it reacts to is decided by the
// optional capability interfaces it also implements: NodeHandler for
// traversal events, FileEnder for the end of each file, and ProjectChecker
// for the whole-project pass. Capabilities are discovered once, when the
// dispatch table is built.
package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

// Severity is the importance of an offense.
type Severity string

// Severities, most severe first.
const (
	SeverityError      Severity = "error"
	SeveritySuggestion Severity = "suggestion"
	SeverityStyle      Severity = "style"
)

// ParseSeverity validates s.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityError, SeveritySuggestion, SeverityStyle:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q (want error, suggestion or style)", s)
	}
}

// Rank orders severities: error is 0, style is 2.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeveritySuggestion:
		return 1
	default:
		return 2
	}
}

// Meta describes a check.
type Meta struct {
	// Code is the unique name of the check, e.g. "MissingTemplate".
	Code string

	Severity   Severity
	Categories []filetype.Category
	Doc        string

	// WholeProject marks checks that need every file parsed before they
	// can report.
	WholeProject bool

	// Correctable marks checks that may attach fixes to offenses.
	Correctable bool
}

// AppliesTo reports whether the check runs on files of category c.
func (m Meta) AppliesTo(c filetype.Category) bool {
	for _, covered := range c.Covers() {
		if slices.Contains(m.Categories, covered) {
			return true
		}
	}
	return false
}

// Check is implemented by every rule plugin. Constructing a check must not
// perform I/O. One instance lives for one analysis run and may keep state
// across files.
type Check interface {
	Meta() Meta
}

// Phase says whether an event fires before or after a node's children.
type Phase int

// Phases.
const (
	PhaseOn Phase = iota
	PhaseAfter
)

func (p Phase) String() string {
	if p == PhaseAfter {
		return "after"
	}
	return "on"
}

// Dispatch kinds matched by every node and by every Liquid tag.
const (
	KindNode = "node"
	KindTag  = "tag"
)

// Event is one traversal callback slot, e.g. on "render" or after "if".
type Event struct {
	Phase Phase
	Kind  string
}

// On returns the pre-order event for kind.
func On(kind string) Event { return Event{Phase: PhaseOn, Kind: kind} }

// After returns the post-order event for kind.
func After(kind string) Event { return Event{Phase: PhaseAfter, Kind: kind} }

func (e Event) String() string {
	return e.Phase.String() + "_" + e.Kind
}

// NodeHandler receives traversal events for the kinds it subscribes to.
type NodeHandler interface {
	Check
	Subscriptions() []Event
	HandleNode(ctx *Context, ev Event, n *ast.Node)
}

// FileEnder is called once per file after its traversal. Checks use it to
// record per-file facts for later cross-file correlation.
type FileEnder interface {
	Check
	EndFile(ctx *Context, f *ast.File)
}

// ProjectChecker is called once per run, after every single-file pass.
type ProjectChecker interface {
	Check
	CheckProject(ctx *ProjectContext)
}
