package commands

import (
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// PromptNext lets the user pick a command from a menu, asks for its
// arguments when it takes any, and runs it.
func PromptNext(cmd *cobra.Command, args []string) error {
	path := []string{}
	next := cmd
	for next.HasAvailableSubCommands() {
		picked, err := pickCommand(next)
		if err != nil {
			return err
		}
		path = append(path, picked.Name())
		next = picked
	}

	words := args
	if strings.Contains(next.Use, " ") {
		line, err := promptArgs(cmd, next)
		if err != nil {
			return err
		}
		words = append(words, strings.Fields(line)...)
	}

	root := cmd.Root()
	root.SetArgs(append(path, words...))
	return root.ExecuteContext(cmd.Context())
}

func pickCommand(cmd *cobra.Command) (*cobra.Command, error) {
	var subcommands []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "completion" {
			subcommands = append(subcommands, c)
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Name | bold }} {{ .Short | green }}",
		Inactive: "   {{ .Name }} {{ .Short | cyan }}",
		Selected: "➜  {{ .Name | bold }}",
		Details: `
--------- Example ----------
{{ .Example }}
`,
	}

	searcher := func(input string, index int) bool {
		subcommand := subcommands[index]
		name := strings.ReplaceAll(strings.ToLower(subcommand.Name()+subcommand.Short), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")

		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Commands",
		Items:     subcommands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}

	i, _, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	return subcommands[i], nil
}

func promptArgs(cmd, next *cobra.Command) (string, error) {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}

	_, usage, _ := strings.Cut(next.Use, " ")
	prompt := promptui.Prompt{
		Label:     usage,
		Templates: templates,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    NopCloser(cmd.OutOrStdout()),
	}
	return prompt.Run()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser lets promptui write to a command's output without closing it.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{Writer: w}
}
