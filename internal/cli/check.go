package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
	"github.com/yaklabco/poscheck/pkg/reporter"
	"github.com/yaklabco/poscheck/pkg/runner"
)

type checkFlags struct {
	format    string
	failLevel string
	noContext bool
	compact   bool
	byCheck   bool
}

func newCheckCommand() *cobra.Command {
	var cliCfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check a platformOS project",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, &cliCfg, flags)
		},
	}

	cmd.Flags().BoolVar(&cliCfg.Fix, "fix", false, "correct offenses where possible")
	cmd.Flags().BoolVar(&cliCfg.DryRun, "dry-run", false, "compute corrections without writing them")
	cmd.Flags().BoolVar(&cliCfg.NoBackups, "no-backups", false, "disable backups when writing corrections")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: text, json, diff")
	cmd.Flags().StringVar(&flags.failLevel, "fail-level", string(check.SeverityStyle),
		"lowest severity that fails the run: error, suggestion, style")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.byCheck, "by-check", false, "append per-check totals to text output")
	selectionFlags(cmd, &cliCfg)

	return cmd
}

const checkLongDescription = `Check every Liquid, HTML, GraphQL and YAML file of the project, or only
the given files and directories. Whole-project checks such as
MissingTemplate and UnusedPartial run only when the whole project is
checked.

Examples:
  poscheck check                        # Check the project
  poscheck check app/views/pages        # Check one directory
  poscheck check --fix                  # Correct offenses in place
  poscheck check --fix --dry-run --format diff
                                        # Print corrections as a diff
  poscheck check --format json          # Output as JSON for CI
  poscheck check --fail-level error     # Fail only on errors`

func runCheck(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *checkFlags) error {
	ctx := cmd.Context()

	failLevel, err := check.ParseSeverity(flags.failLevel)
	if err != nil {
		return exitWith(ExitInvalidUsage, fmt.Errorf("invalid --fail-level: %w", err))
	}
	if flags.format != "" {
		if _, err := reporter.ParseFormat(flags.format); err != nil {
			return exitWith(ExitInvalidUsage, err)
		}
		cliCfg.Format = config.OutputFormat(flags.format)
	}

	loadResult, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}
	cfg := loadResult.Config

	// --dry-run alone still means "show me the corrections".
	if cfg.DryRun {
		cfg.Fix = true
	}

	logging.FromContext(ctx).Debug("starting run",
		logging.FieldPaths, args,
		logging.FieldRoot, loadResult.Root,
	)

	result, err := runner.Run(ctx, runner.Options{
		Root:      loadResult.Root,
		Paths:     args,
		Config:    cfg,
		Registry:  check.DefaultRegistry,
		FailLevel: failLevel,
	})
	if err != nil {
		return exitWith(ExitInternalError, errors.Join(errors.New("check run failed"), err))
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return exitWith(ExitConfigError, err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode(cmd),
		ShowContext: !flags.noContext,
		ShowSummary: true,
		GroupByFile: true,
		Compact:     flags.compact,
		ByCheck:     flags.byCheck,
	})
	if err != nil {
		return exitWith(ExitInternalError, fmt.Errorf("create reporter: %w", err))
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return exitWith(ExitInternalError, fmt.Errorf("report results: %w", err))
	}

	switch code := ExitCodeFromResult(result); code {
	case ExitSuccess:
		return nil
	case ExitOffenses:
		return exitWith(code, ErrOffensesFound)
	default:
		return exitWith(code, errors.Join(result.Errors...))
	}
}
