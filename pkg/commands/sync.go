package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/push"
)

var errSyncAllWithIDs = errors.New("give entry ids or --all, not both")

func addSync(topLevel *cobra.Command) {
	var all bool

	cmd := &cobra.Command{
		Use:   "sync [ID...]",
		Short: "Push entries to the calendar",
		Example: `
daybook sync 42
daybook sync 41 42
daybook sync --all
`,
		ValidArgsFunction: entryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := options.ParseIDs(args)
			if err != nil {
				return output.HandleError(err)
			}
			if all && len(ids) > 0 {
				return output.HandleError(errSyncAllWithIDs)
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			p := push.Push{
				App:  svc,
				IDs:  ids,
				All:  all,
				JSON: output.JSON,
				Out:  cmd.OutOrStdout(),
			}
			return output.HandleError(p.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Sync every entry in one request.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
