package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/events"
)

func addEvents(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the calendar events made from entries",
		Example: `
daybook events
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			e := events.Events{App: svc, JSON: output.JSON, Out: cmd.OutOrStdout()}
			return output.HandleError(e.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
