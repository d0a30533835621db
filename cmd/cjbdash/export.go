package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cjb-incidents/core/feedsync"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var excel, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the workbook to data.json once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			if excel == "" {
				excel = cfg.Sync.ExcelPath
			}
			if output == "" {
				output = cfg.Sync.OutputPath
			}
			exporter := feedsync.NewExporter(excel, output)
			snap, err := exporter.Export(cmd.Context())
			if err != nil {
				return err
			}
			rootOpts.logger(cmd).Printf("export: %d rows written to %s", snap.Count, exporter.OutputPath())
			fmt.Fprintf(cmd.OutOrStdout(), "%d registros -> %s\n", snap.Count, exporter.OutputPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&excel, "excel", "", "incident workbook (overrides sync.excel_path)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "json output (overrides sync.output_path)")
	return cmd
}
