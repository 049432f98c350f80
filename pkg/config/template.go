package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes every check with its documentation. If false, a
	// minimal template is generated.
	Full bool

	// Checks describes the checks to document in a full template.
	Checks []CheckInfo

	// IncludeChecks limits a full template to these codes.
	// If empty, all checks are included.
	IncludeChecks []string
}

// CheckInfo contains check metadata for template generation.
type CheckInfo struct {
	Code         string
	Doc          string
	Severity     string
	Categories   []string
	WholeProject bool
	Correctable  bool
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) []byte {
	if opts.Full {
		return generateFullTemplate(opts)
	}
	return generateMinimalTemplate()
}

func generateMinimalTemplate() []byte {
	return []byte(DefaultTemplateHeader() + `

# Baseline: "default" enables every check, "nothing" enables none.
extends: default

# File patterns no check looks at (glob patterns, ** matches directories)
ignore:
  - "node_modules/**"

# Per-check configuration, keyed by check code
# SpaceInsideBraces:
#   enabled: true
#   severity: style
#   ignore:
#     - "app/views/partials/legacy/**"
`)
}

func generateFullTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(`# poscheck configuration - Full Template
# See: https://github.com/yaklabco/poscheck
#
# This template lists every check with its default settings.

# Baseline: "default" enables every check, "nothing" enables none.
extends: default

# File patterns no check looks at (glob patterns, ** matches directories)
ignore:
  - "node_modules/**"

# Sidecar backups written next to fixed files
backups:
  enabled: false
  mode: sidecar
`)

	infos := slices.Clone(opts.Checks)
	if len(opts.IncludeChecks) > 0 {
		infos = slices.DeleteFunc(infos, func(info CheckInfo) bool {
			return !slices.Contains(opts.IncludeChecks, info.Code)
		})
	}
	slices.SortFunc(infos, func(a, b CheckInfo) int {
		return strings.Compare(a.Code, b.Code)
	})

	for _, info := range infos {
		fmt.Fprintf(&buf, "\n# %s\n", wrapComment(info.Doc, commentWrapWidth))
		if len(info.Categories) > 0 {
			fmt.Fprintf(&buf, "# Applies to: %s\n", strings.Join(info.Categories, ", "))
		}
		if info.WholeProject {
			buf.WriteString("# Whole project: yes\n")
		}
		if info.Correctable {
			buf.WriteString("# Auto-fix: yes\n")
		}
		fmt.Fprintf(&buf, "%s:\n", info.Code)
		buf.WriteString("  enabled: true\n")
		fmt.Fprintf(&buf, "  severity: %s\n", info.Severity)
		buf.WriteString("  # ignore:\n")
		buf.WriteString("  #   - \"app/views/partials/legacy/**\"\n")
	}

	return buf.Bytes()
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n# ")
}

// DefaultTemplateHeader returns the header for generated configs.
func DefaultTemplateHeader() string {
	return `# poscheck configuration
# See: https://github.com/yaklabco/poscheck`
}
