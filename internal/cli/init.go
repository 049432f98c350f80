package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/poscheck/internal/configloader"
	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
)

type initFlags struct {
	force  bool
	full   bool
	only   []string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .platformos-check.yml configuration file",
		Long: `Create a .platformos-check.yml file in the current directory. The file
can enable or disable checks, change their severity, and ignore paths.

Examples:
  poscheck init                      Create a minimal configuration
  poscheck init --full               List every check with its defaults
  poscheck init --full --only MissingTemplate,UnusedPartial
  poscheck init --output ci.yml      Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "document every check in the template")
	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "limit a full template to these check codes")
	cmd.Flags().StringVarP(&flags.output, "output", "o", config.FileName, "output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()
	logger.SetOutput(cmd.OutOrStdout())

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	existed := false
	if _, err := os.Stat(absPath); err == nil {
		existed = true
	}

	opts := config.TemplateOptions{
		Full:          flags.full,
		Checks:        checkInfos(check.DefaultRegistry),
		IncludeChecks: flags.only,
	}
	if err := configloader.WriteTemplate(absPath, opts, flags.force); err != nil {
		return exitWith(ExitInvalidUsage, err)
	}

	if existed {
		logger.Warn("overwrote existing file", logging.FieldPath, flags.output)
	}
	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'poscheck checks' to see all available checks")

	return nil
}

func checkInfos(registry *check.Registry) []config.CheckInfo {
	metas := registry.Metas()
	infos := make([]config.CheckInfo, 0, len(metas))
	for _, m := range metas {
		infos = append(infos, config.CheckInfo{
			Code:         m.Code,
			Doc:          m.Doc,
			Severity:     string(m.Severity),
			Categories:   categories(m),
			WholeProject: m.WholeProject,
			Correctable:  m.Correctable,
		})
	}
	return infos
}
