package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/export"
)

func addExport(topLevel *cobra.Command) {
	var open bool

	cmd := &cobra.Command{
		Use:   "export ID...",
		Short: "Make a Shortcuts link that adds entries to Notes",
		Long: options.Wrap80(`Ask the server for a Shortcuts link that adds the given entries to
Notes, in the order given. The link is printed; --open also hands it to the
system.`),
		Example: `
daybook export 42
daybook export 41 42 43 --open
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: entryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := options.ParseIDs(args)
			if err != nil {
				return output.HandleError(err)
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			e := export.Export{
				App:  svc,
				IDs:  ids,
				Open: open,
				JSON: output.JSON,
				Out:  cmd.OutOrStdout(),
			}
			return output.HandleError(e.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Open the link after creating it.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

func addOpen(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the calendar or notes app",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	calendar := &cobra.Command{
		Use:   "calendar [DATE]",
		Short: "Open the calendar, at DATE when given",
		Example: `
daybook open calendar
daybook open calendar 2024-1-15
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oo := &options.OnOptions{}
			if len(args) == 1 {
				oo.OnString = args[0]
			}
			on, err := oo.GetOn()
			if err != nil {
				return output.HandleError(err)
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			o := export.Open{App: svc, Target: export.Calendar, On: on, Out: cmd.OutOrStdout()}
			return output.HandleError(o.Do(cmd.Context()))
		},
	}

	notes := &cobra.Command{
		Use:   "notes",
		Short: "Open the notes app",
		Example: `
daybook open notes
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			o := export.Open{App: svc, Target: export.Notes, Out: cmd.OutOrStdout()}
			return output.HandleError(o.Do(cmd.Context()))
		},
	}

	cmd.AddCommand(calendar, notes)
	topLevel.AddCommand(cmd)
}
