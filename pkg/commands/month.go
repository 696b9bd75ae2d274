package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/runner/log"
)

func addMonth(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	var day bool

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a month grid with the days that have entries",
		Example: `
daybook month
daybook month --on 2024-1-1
daybook month --day
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := oo.GetOnOrToday()
			if err != nil {
				return output.HandleError(err)
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			l := log.Log{
				App:   svc,
				On:    on,
				Today: entry.Today(oo.Now),
				Day:   day,
				Out:   cmd.OutOrStdout(),
			}
			return output.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddOnArgs(cmd, oo)
	cmd.Flags().BoolVar(&day, "day", false, "Also list the entries of the day.")

	topLevel.AddCommand(cmd)
}
