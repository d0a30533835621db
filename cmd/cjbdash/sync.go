package main

import (
	"github.com/spf13/cobra"

	"cjb-incidents/core/appbootstrap"
)

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		excel string
		noGit bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Watch the workbook and auto-sync until interrupted",
		Long: `Export the workbook once, then again after every stable change, recording
each snapshot in the history database and publishing data.json with git when
sync.git_enabled is set. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			if excel != "" {
				cfg.Sync.ExcelPath = excel
			}
			if noGit {
				cfg.Sync.GitEnabled = false
			}
			return appbootstrap.Watch(cmd.Context(), cfg, rootOpts.logger(cmd))
		},
	}
	cmd.Flags().StringVar(&excel, "excel", "", "incident workbook (overrides sync.excel_path)")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "export without committing and pushing")
	return cmd
}
