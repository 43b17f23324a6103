package main

import (
	"io"
	"log/slog"

	"github.com/cwbudde/waveio/internal/config"
	"github.com/spf13/cobra"
)

// cliState is shared by the subcommands once the root command has loaded
// the configuration.
type cliState struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()
	state := &cliState{cfg: defaults, logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}

	cmd := &cobra.Command{
		Use:           "waveio",
		Short:         "Inspect, slice and convert PCM WAVE files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: state.cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}

			state.cfg = loaded
			state.logger = newLogger(cmd.ErrOrStderr(), loaded.Log.Level)

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&state.cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newInfoCmd(state))
	cmd.AddCommand(newSliceCmd(state))
	cmd.AddCommand(newToAIFFCmd(state))

	return cmd
}

// newLogger builds a JSON slog logger writing to w.
func newLogger(w io.Writer, levelStr string) *slog.Logger {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
