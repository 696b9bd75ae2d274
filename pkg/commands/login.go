package commands

import (
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/runner/login"
)

func addLogin(topLevel *cobra.Command) {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Example: `
daybook login
daybook login --username alice
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			l := login.Login{
				App:      svc,
				Username: username,
				Password: password,
				Stdin:    io.NopCloser(cmd.InOrStdin()),
				Stdout:   NopCloser(cmd.OutOrStdout()),
				Out:      cmd.OutOrStdout(),
			}
			return output.HandleError(l.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account name. Prompted for when empty.")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password. Prompted for when empty.")

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Example: `
daybook logout
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			l := login.Logout{App: svc, Out: cmd.OutOrStdout()}
			return output.HandleError(l.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
