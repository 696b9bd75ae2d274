package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/config"
	"tableflip.dev/daybook/pkg/logging"
)

var (
	output   = &options.OutputOptions{}
	settings *viper.Viper
	// extra is appended to every Service the commands build.
	extra []app.Option
)

func New() *cobra.Command {
	settings = config.New()
	output = &options.OutputOptions{}
	interactive := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:           "daybook",
		Short:         options.Wrap80("Write, sync and export your journal from the terminal."),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.BindFlags(settings, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive.Interactive {
				return PromptNext(cmd, args)
			}
			return cmd.Help()
		},
	}

	config.AddFlags(cmd.PersistentFlags())
	options.InteractiveArgs(cmd, interactive)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addLogin(topLevel)
	addLogout(topLevel)
	addStatus(topLevel)
	addList(topLevel)
	addShow(topLevel)
	addAdd(topLevel)
	addEdit(topLevel)
	addDelete(topLevel)
	addSync(topLevel)
	addEvents(topLevel)
	addExport(topLevel)
	addOpen(topLevel)
	addMonth(topLevel)
	addKey(topLevel)
	addMCP(topLevel)
	addDevServer(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

func loadConfig() (*config.Config, error) {
	return config.Load(settings)
}

// service builds the shared wiring for a one-shot command. Logs go to
// stderr so they never mix with printed output.
func service(cmd *cobra.Command) (*app.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts := []app.Option{app.WithLogger(logging.New(cmd.ErrOrStderr(), cfg.LogLevel))}
	return app.New(cfg, append(opts, extra...)...)
}
