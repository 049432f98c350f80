package runner

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yaklabco/poscheck/pkg/config"
	"github.com/yaklabco/poscheck/pkg/filetype"
	"github.com/yaklabco/poscheck/pkg/storage"
)

// Selection decides which project paths a run reads and analyses.
type Selection struct {
	ignore *config.Matcher
}

// NewSelection compiles the global ignore globs of cfg.
func NewSelection(cfg *config.Config) (*Selection, error) {
	m, err := config.CompileGlobs(cfg.Ignore)
	if err != nil {
		return nil, fmt.Errorf("compile ignore: %w", err)
	}
	return &Selection{ignore: m}, nil
}

// Ignored reports whether p is excluded by the global ignore globs.
func (s *Selection) Ignored(p string) bool {
	return s.ignore.Match(p)
}

// Load reports whether the content of p is needed: it is analysable and
// not ignored.
func (s *Selection) Load(p string) bool {
	return !s.Ignored(p) && filetype.IsAnalyzable(filetype.Classify(p).Category)
}

// ResolveRoot returns the absolute project root, defaulting to the
// working directory.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// Targets maps user paths onto snapshot paths accepted by include. A
// directory selects every such path below it. It returns nil when the
// inputs cover the whole project.
func Targets(
	ctx context.Context,
	root string,
	inputs []string,
	snap *storage.Snapshot,
	include func(string) bool,
) ([]string, error) {
	seen := make(map[string]bool)
	targets := []string{}

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		rel, err := projectPath(root, input)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			return nil, nil
		}

		matched := false
		for _, p := range snap.Paths() {
			if p != rel && !strings.HasPrefix(p, rel+"/") {
				continue
			}
			matched = true
			if !include(p) {
				continue
			}
			if !seen[p] {
				seen[p] = true
				targets = append(targets, p)
			}
		}

		if !matched {
			return nil, fmt.Errorf("%s: %w", input, storage.ErrNotFound)
		}
	}

	return targets, nil
}

// projectPath converts a user path into a slash path relative to root.
func projectPath(root, input string) (string, error) {
	abs := input
	if !filepath.IsAbs(abs) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		abs = filepath.Join(wd, input)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", input, err)
	}
	rel = path.Clean(filepath.ToSlash(rel))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the project root %s", input, root)
	}
	return rel, nil
}
