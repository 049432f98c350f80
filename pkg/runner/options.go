// Package runner drives a batch analysis of a platformOS project: snapshot
// the storage, run the analyzer, optionally correct and write, and reduce
// the outcome to offenses plus an exit status.
package runner

import (
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
	"github.com/yaklabco/poscheck/pkg/storage"
)

// Options controls a batch run.
type Options struct {
	// Root is the project root. Defaults to the current working directory.
	Root string

	// Paths limit the single-file pass to these files or directories.
	// Relative paths resolve against the process working directory.
	// Empty means the whole project.
	Paths []string

	// Config is the resolved configuration for this run.
	Config *config.Config

	// Registry supplies the checks. Defaults to check.DefaultRegistry.
	Registry *check.Registry

	// Storage overrides the file system storage rooted at Root.
	Storage storage.Storage

	// FailLevel is the least severe severity that makes offenses fail the
	// run. Defaults to style, so any offense fails.
	FailLevel check.Severity
}

func (o Options) registry() *check.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return check.DefaultRegistry
}

func (o Options) config() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return config.NewConfig()
}

func (o Options) failLevel() check.Severity {
	if o.FailLevel != "" {
		return o.FailLevel
	}
	return check.SeverityStyle
}
