package main

import (
	"github.com/spf13/cobra"

	"cjb-incidents/core/appbootstrap"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		listen string
		excel  string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the feed service",
		Long: `Serve the workbook as /api/incidentes, the dashboard API and the static
dashboard files. With --watch (or sync.enabled) the workbook is exported and
published after every stable change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			if excel != "" {
				cfg.Sync.ExcelPath = excel
			}
			if watch {
				cfg.Sync.Enabled = true
			}
			return appbootstrap.Serve(cmd.Context(), cfg, rootOpts.logger(cmd))
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides listen_addr)")
	cmd.Flags().StringVar(&excel, "excel", "", "incident workbook (overrides sync.excel_path)")
	cmd.Flags().BoolVar(&watch, "watch", false, "auto-sync on workbook changes")
	return cmd
}
