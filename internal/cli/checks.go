package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/check"
)

const formatJSON = "json"

// checkInfo represents a check in JSON output.
type checkInfo struct {
	Code         string   `json:"code"`
	Doc          string   `json:"doc"`
	Severity     string   `json:"severity"`
	Categories   []string `json:"categories"`
	WholeProject bool     `json:"wholeProject"`
	Correctable  bool     `json:"correctable"`
}

func newChecksCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List available checks",
		Long: `List all available checks with their default severity, the file
categories they inspect, and whether they can correct offenses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metas := check.DefaultRegistry.Metas()

			if format == formatJSON {
				return outputChecksJSON(cmd.OutOrStdout(), metas)
			}

			logger := logging.NewInteractive()
			logger.SetOutput(cmd.OutOrStdout())
			logger.Info("available checks")

			for _, m := range metas {
				correctable := "-"
				if m.Correctable {
					correctable = "yes"
				}
				scope := "file"
				if m.WholeProject {
					scope = "project"
				}
				logger.Info(m.Code,
					logging.FieldSeverity, m.Severity,
					logging.FieldCategories, strings.Join(categories(m), ","),
					logging.FieldScope, scope,
					logging.FieldCorrectable, correctable,
					logging.FieldDoc, m.Doc,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func categories(m check.Meta) []string {
	out := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, string(c))
	}
	return out
}

// outputChecksJSON writes checks as a JSON array.
func outputChecksJSON(w io.Writer, metas []check.Meta) error {
	infos := make([]checkInfo, 0, len(metas))
	for _, m := range metas {
		infos = append(infos, checkInfo{
			Code:         m.Code,
			Doc:          m.Doc,
			Severity:     string(m.Severity),
			Categories:   categories(m),
			WholeProject: m.WholeProject,
			Correctable:  m.Correctable,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding checks: %w", err)
	}
	return nil
}
