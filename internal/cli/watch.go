package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/poscheck/internal/watch"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
)

func newWatchCommand() *cobra.Command {
	var cliCfg config.Config
	var debounce, interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check the project as files change",
		Long: `Watch the project directory and print offense changes as files are
edited. Changed files are checked right away; whole-project checks run
at most once per --project-interval. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loadResult, err := loadConfig(cmd, &cliCfg)
			if err != nil {
				return err
			}

			w, err := watch.New(watch.Options{
				Root:            loadResult.Root,
				Config:          loadResult.Config,
				Registry:        check.DefaultRegistry,
				Out:             cmd.OutOrStdout(),
				Color:           colorMode(cmd),
				Debounce:        debounce,
				ProjectInterval: interval,
			})
			if err != nil {
				return exitWith(ExitConfigError, err)
			}

			if err := w.Run(cmd.Context()); err != nil {
				return exitWith(ExitInternalError, errors.Join(errors.New("watch failed"), err))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before changed files are checked")
	cmd.Flags().DurationVar(&interval, "project-interval", watch.DefaultProjectInterval,
		"minimum time between whole-project checks")
	selectionFlags(cmd, &cliCfg)

	return cmd
}
