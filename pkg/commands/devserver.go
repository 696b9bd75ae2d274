package commands

import (
	"fmt"
	"net"
	"net/url"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/auth"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/mockserver"
)

func addDevServer(topLevel *cobra.Command) {
	var (
		addr     string
		username string
		password string
		seed     int
	)

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory journal backend for development",
		Long: options.Wrap80(`Serve the journal REST API from memory so the UI, the CLI and the MCP
server can be tried without the real backend. Nothing is kept after exit.`),
		Example: `
daybook dev-server
daybook dev-server --addr 127.0.0.1:5001 --user demo --password demo123 --seed 5
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

			srv := mockserver.New(mockserver.WithLogger(log))
			if username != "" {
				if err := (auth.Credentials{Username: username, Password: password}).Validate(); err != nil {
					return err
				}
				srv.AddUser(username, password)
				today := entry.Today(nil)
				for i := 0; i < seed; i++ {
					srv.Seed(username, entry.JournalEntry{
						Title:   fmt.Sprintf("Sample entry %d", i+1),
						Content: "Written by the dev server.",
						Date:    today.AddDays(-i),
					})
				}
			}

			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return fmt.Errorf("invalid --addr %q: %w", addr, err)
			}
			base := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: mockserver.Prefix}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dev server on %s\n", base.String())
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5001", "Listen address.")
	cmd.Flags().StringVar(&username, "user", "", "Create this account at start.")
	cmd.Flags().StringVar(&password, "password", "", "Password for --user, at least 6 characters.")
	cmd.Flags().IntVar(&seed, "seed", 0, "Sample entries to create for --user.")

	topLevel.AddCommand(cmd)
}
