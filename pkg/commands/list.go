package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/get"
)

func addList(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	ido := &options.IDOptions{}
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries, newest first",
		Example: `
daybook list
daybook list --today
daybook list --on 2024-1-15
daybook list --limit 10 --offset 10 --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := oo.GetOn()
			if err != nil {
				return output.HandleError(err)
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			if limit <= 0 {
				limit = svc.Config.PageSize
			}
			g := get.Get{
				App:    svc,
				On:     on,
				Limit:  limit,
				Offset: offset,
				ShowID: ido.ShowID,
				JSON:   output.JSON,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddOnArgs(cmd, oo)
	options.AddTodayArgs(cmd, oo)
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, output)
	cmd.Flags().IntVar(&limit, "limit", 0, "Entries per page. Defaults to the page-size setting.")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip.")

	topLevel.AddCommand(cmd)
}
