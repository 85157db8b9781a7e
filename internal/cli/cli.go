package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/config"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type rootOptions struct {
	configPath string
	logLevel   string

	settings config.Settings
	log      zerolog.Logger
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{settings: config.Defaults(), log: zerolog.Nop()}
	vf := &viewFlags{}

	cmd := &cobra.Command{
		Use:           "chat-explorer [file]",
		Short:         "Explore customer-support chat transcripts",
		Long:          "Explore customer-support chat transcripts from a JSON export.\nWith only a file argument, opens the terminal browser (or prints a list when stdout is not a terminal).",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: false,
		SilenceUsage:  true,
		Version:       buildVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if isTerminal(cmd.OutOrStdout()) {
				return runTui(cmd, opts, vf, args[0])
			}
			return runList(cmd, opts, vf, args[0], listOptions{pages: 1})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Override config file path (default: OS user config dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	vf.register(cmd, true)

	cmd.AddCommand(
		newTuiCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newReadCmd(opts),
		newSchemaCmd(),
	)

	return cmd
}

// setup loads settings, applies environment and flag overrides, and builds
// the logger shared by every subcommand.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	store, err := config.NewStore(o.configPath)
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return err
	}
	settings = settings.ApplyEnv()
	if o.logLevel != "" {
		settings.LogLevel = o.logLevel
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	o.settings = settings

	logger, err := newLogger(cmd.ErrOrStderr(), settings.LogLevel, isTerminal(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	o.log = logger
	o.log.Debug().Str("config", store.Path()).Msg("settings loaded")
	return nil
}

func (o *rootOptions) component(name string) *zerolog.Logger {
	l := o.log.With().Str("component", name).Logger()
	return &l
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
