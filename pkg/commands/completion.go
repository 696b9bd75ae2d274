package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/journal"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(daybook completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(daybook completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(cmd.OutOrStdout())
		},
	}

	topLevel.AddCommand(cmd)
}

// entryCompletions offers the ids of the most recent entries, with their
// titles as descriptions.
func entryCompletions(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	svc, err := service(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	page, err := svc.Journal.List(cmd.Context(), journal.ListOptions{Limit: svc.Config.PageSize})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		id := strconv.FormatInt(e.ID, 10)
		out = append(out, id+"\t"+e.DisplayTitle())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
