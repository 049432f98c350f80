package check

import (
	"slices"

	"github.com/yaklabco/poscheck/pkg/ast"
	"github.com/yaklabco/poscheck/pkg/filetype"
)

// Dispatcher maps traversal events to the handlers subscribed to them, in
// the order the checks were loaded.
type Dispatcher struct {
	table map[Event][]NodeHandler
}

// NewDispatcher builds the table for checks. Checks that do not implement
// NodeHandler are ignored.
func NewDispatcher(checks []Check) *Dispatcher {
	d := &Dispatcher{table: make(map[Event][]NodeHandler)}
	for _, c := range checks {
		h, ok := c.(NodeHandler)
		if !ok {
			continue
		}
		seen := make(map[Event]bool)
		for _, ev := range h.Subscriptions() {
			if seen[ev] {
				continue
			}
			seen[ev] = true
			d.table[ev] = append(d.table[ev], h)
		}
	}
	return d
}

// Handlers returns the handlers subscribed to ev.
func (d *Dispatcher) Handlers(ev Event) []NodeHandler {
	return d.table[ev]
}

// Empty reports whether no handler subscribed to anything.
func (d *Dispatcher) Empty() bool {
	return len(d.table) == 0
}

// Events returns the events n fires in phase: "node", then "tag" for
// Liquid tags, then the node's own kind. After-events come in reverse.
func Events(n *ast.Node, phase Phase) []Event {
	events := make([]Event, 0, 3)
	events = append(events, Event{Phase: phase, Kind: KindNode})
	if n.IsTag() {
		events = append(events, Event{Phase: phase, Kind: KindTag})
	}
	events = append(events, Event{Phase: phase, Kind: n.Kind()})
	if phase == PhaseAfter {
		slices.Reverse(events)
	}
	return events
}

// Set is the classified view of the checks loaded for one run.
type Set struct {
	checks   []Check
	project  []ProjectChecker
	dispatch map[filetype.Category]*Dispatcher
}

// NewSet classifies checks by category and capability.
func NewSet(checks []Check) *Set {
	s := &Set{
		checks:   checks,
		dispatch: make(map[filetype.Category]*Dispatcher),
	}
	for _, c := range checks {
		if p, ok := c.(ProjectChecker); ok {
			s.project = append(s.project, p)
		}
	}
	for _, cat := range filetype.AllCategories() {
		var subset []Check
		for _, c := range checks {
			if slices.Contains(c.Meta().Categories, cat) {
				subset = append(subset, c)
			}
		}
		s.dispatch[cat] = NewDispatcher(subset)
	}
	return s
}

// Checks returns every loaded check.
func (s *Set) Checks() []Check { return s.checks }

// Project returns the checks with a whole-project pass.
func (s *Set) Project() []ProjectChecker { return s.project }

// ForFile returns the checks that apply to files of category c.
func (s *Set) ForFile(c filetype.Category) []Check {
	var out []Check
	for _, chk := range s.checks {
		if chk.Meta().AppliesTo(c) {
			out = append(out, chk)
		}
	}
	return out
}

// Dispatcher returns the table for trees of category c. The Liquid tree of
// a template uses Liquid, its HTML tree uses HTML.
func (s *Set) Dispatcher(c filetype.Category) *Dispatcher {
	if d, ok := s.dispatch[c]; ok {
		return d
	}
	return NewDispatcher(nil)
}

// TreeCategory returns the category whose checks traverse root.
func TreeCategory(f *ast.File, root *ast.Node) filetype.Category {
	switch root.Family() {
	case ast.FamilyLiquid:
		return filetype.Liquid
	case ast.FamilyHTML:
		return filetype.HTML
	default:
		return f.Category
	}
}
