// Package cli provides the Cobra command structure for poscheck.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/poscheck/internal/logging"

	// Built-in checks register themselves with check.DefaultRegistry.
	_ "github.com/yaklabco/poscheck/pkg/checks"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root poscheck command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var color string

	rootCmd := &cobra.Command{
		Use:   "poscheck",
		Short: "Linter and autocorrector for platformOS Liquid projects",
		Long: `poscheck inspects the Liquid, HTML, GraphQL and YAML files of a platformOS
project and reports offenses: syntax errors, deprecated tags, unused
assigns, missing partials and more.

Many offenses can be corrected automatically. Corrections are applied in
passes until the files stop changing, conflicting edits are deferred to
the next pass, and dry runs print the diff instead of writing it.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newChecksCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(color, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}
