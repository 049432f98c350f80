package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/poscheck/internal/configloader"
	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
)

// loadConfig resolves the configuration for a command, with cliCfg as
// the highest-precedence layer.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*configloader.LoadResult, error) {
	logger := logging.FromContext(cmd.Context())

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Registry:     check.DefaultRegistry,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, exitWith(ExitConfigError, errors.Join(errors.New("failed to load configuration"), err))
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldRoot, loadResult.Root,
		logging.FieldFix, loadResult.Config.Fix,
		logging.FieldDryRun, loadResult.Config.DryRun,
	)

	return loadResult, nil
}

// colorMode reads the persistent color flag.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}

// selectionFlags registers the flags shared by check and watch.
func selectionFlags(cmd *cobra.Command, cliCfg *config.Config) {
	cmd.Flags().StringSliceVar(&cliCfg.Ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&cliCfg.EnableChecks, "enable", nil, "check codes to enable")
	cmd.Flags().StringSliceVar(&cliCfg.DisableChecks, "disable", nil, "check codes to disable")
	cmd.Flags().IntVar(&cliCfg.Jobs, "jobs", 0, "number of parallel parsers (0 = auto)")
}
