package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/info"
)

func addStatus(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the server, the config file and who is signed in",
		Example: `
daybook status
daybook status --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			i := info.Info{
				App:        svc,
				ConfigFile: settings.ConfigFileUsed(),
				JSON:       output.JSON,
				Out:        cmd.OutOrStdout(),
			}
			return output.HandleError(i.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
