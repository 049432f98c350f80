package watch

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/yaklabco/poscheck/internal/ui/pretty"
	"github.com/yaklabco/poscheck/pkg/check"
)

// Printer writes published offense changes.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles *pretty.Styles
}

// NewPrinter returns a printer writing to out. color takes the values
// accepted by pretty.IsColorEnabled.
func NewPrinter(out io.Writer, color string) *Printer {
	return &Printer{out: out, styles: pretty.NewStyles(pretty.IsColorEnabled(color, out))}
}

// Print writes one block per changed path, in path order. A path with
// no offenses is reported as clean.
func (p *Printer) Print(diff map[string][]check.Offense) {
	if len(diff) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, path := range slices.Sorted(maps.Keys(diff)) {
		offenses := diff[path]
		if len(offenses) == 0 {
			fmt.Fprintf(p.out, "%s %s\n", p.styles.FilePath.Render(path), p.styles.Success.Render("clean"))
			continue
		}
		fmt.Fprintln(p.out, p.styles.FormatFileHeader(path, len(offenses)))
		for _, o := range offenses {
			fmt.Fprint(p.out, p.styles.FormatOffense(o, false, ""))
		}
	}
}
