package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cjb-incidents/config"
	"cjb-incidents/core/utils"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cjbdash",
		Short:         "CJB incident dashboard",
		Long:          "Feed service, workbook auto-sync and command-line reports for the CJB incident dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the yaml config (env only when missing)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	return cmd
}

func (o *RootOptions) load() (*config.AppConfig, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// logger writes to stderr so report output on stdout stays clean.
func (o *RootOptions) logger(cmd *cobra.Command) *utils.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return utils.NewLoggerWithWriter(cmd.ErrOrStderr(), level)
}
