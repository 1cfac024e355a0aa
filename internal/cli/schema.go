package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/adaptive/pkg/telemetry"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema <report|samples>",
		Short:     "Print the JSON schema of a telemetry request body",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"report", "samples"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := telemetry.ReportSchema()
			if args[0] == "samples" {
				s = telemetry.SamplesSchema()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}
