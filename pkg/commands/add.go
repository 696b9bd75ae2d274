package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	var title, content string

	cmd := &cobra.Command{
		Use:   "add [content...]",
		Short: "Write a new entry, dated today unless --on is given",
		Example: `
daybook add walked to the lake
daybook add --title "Trip" --content "Packed the car" --on 2024-1-15
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := oo.GetOnOrToday()
			if err != nil {
				return output.HandleError(err)
			}
			if content == "" {
				content = strings.Join(args, " ")
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			a := add.Add{
				App:     svc,
				Title:   title,
				Content: content,
				On:      on,
				JSON:    output.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(a.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Entry title, at most 200 characters.")
	cmd.Flags().StringVar(&content, "content", "", "Entry body. Defaults to the arguments.")
	options.AddOnArgs(cmd, oo)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title, content or date of an entry",
		Example: `
daybook edit 42 --title "Better title"
daybook edit 42 --on 2024-1-16
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: entryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := options.ParseID(args[0])
			if err != nil {
				return output.HandleError(err)
			}
			on, err := oo.GetOn()
			if err != nil {
				return output.HandleError(err)
			}
			svc, err := service(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			e := add.Edit{
				App:  svc,
				ID:   id,
				On:   on,
				JSON: output.JSON,
				Out:  cmd.OutOrStdout(),
			}
			if cmd.Flags().Changed("title") {
				e.Title = &title
			}
			if cmd.Flags().Changed("content") {
				e.Content = &content
			}
			return output.HandleError(e.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title.")
	cmd.Flags().StringVar(&content, "content", "", "New body.")
	options.AddOnArgs(cmd, oo)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
