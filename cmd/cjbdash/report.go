package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cjb-incidents/core/dashboard"
	"cjb-incidents/core/feed"
	"cjb-incidents/core/incidents"
	"cjb-incidents/core/utils"
)

// reportOptions are the report command's flags.
type reportOptions struct {
	File     string
	DateFrom string
	DateTo   string
	Type     string
	Quadrant string
	Officer  string
	Search   string
	Cross    []string
	XLSX     string
	CSV      string
	Watch    bool
	Every    time.Duration
}

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the executive summary of the incident feed",
		Long: `Load incidents through the feed cascade (remote JSON, then the local
service) or from --file, apply the filters and print the executive summary.
--xlsx and --csv also write the filtered incidents.

Cross filters use dimension=value, e.g. --cross hour=14 --cross quadrant=B2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, rootOpts, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.File, "file", "f", "", "load a .xlsx, .csv or .json file instead of the feed")
	f.StringVar(&opts.DateFrom, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&opts.DateTo, "to", "", "last day, YYYY-MM-DD")
	f.StringVar(&opts.Type, "type", "", "incident type")
	f.StringVar(&opts.Quadrant, "quadrant", "", "quadrant (B1..B4)")
	f.StringVar(&opts.Officer, "officer", "", "officer in charge")
	f.StringVar(&opts.Search, "search", "", "free-text search")
	f.StringArrayVar(&opts.Cross, "cross", nil, "cross filter dimension=value (repeatable)")
	f.StringVar(&opts.XLSX, "xlsx", "", "write the filtered incidents to this .xlsx")
	f.StringVar(&opts.CSV, "csv", "", "write the filtered incidents to this .csv")
	f.BoolVarP(&opts.Watch, "watch", "w", false, "reload periodically and reprint")
	f.DurationVar(&opts.Every, "every", 0, "reload interval with --watch (default feed.auto_refresh_minutes)")
	return cmd
}

// query turns the filter flags into a dashboard query.
func (o *reportOptions) query() (dashboard.Query, error) {
	q := dashboard.NewQuery()
	for d, v := range map[dashboard.DropdownDimension]string{
		dashboard.DropdownDateFrom: o.DateFrom,
		dashboard.DropdownDateTo:   o.DateTo,
		dashboard.DropdownType:     o.Type,
		dashboard.DropdownQuadrant: o.Quadrant,
		dashboard.DropdownOfficer:  o.Officer,
		dashboard.DropdownSearch:   o.Search,
	} {
		if v = strings.TrimSpace(v); v != "" {
			q.Dropdown[d] = v
		}
	}
	for _, raw := range o.Cross {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return q, fmt.Errorf("cross filter %q: want dimension=value", raw)
		}
		d := dashboard.CrossDimension(strings.TrimSpace(key))
		if !slices.Contains(dashboard.CrossDimensions, d) {
			return q, fmt.Errorf("cross filter %q: unknown dimension %q", raw, key)
		}
		if _, ok := dashboard.ParseFilterValue(d, strings.TrimSpace(value)); !ok {
			return q, fmt.Errorf("cross filter %q: invalid value for %s", raw, d)
		}
		q.Cross[d] = strings.TrimSpace(value)
	}
	return q, nil
}

func runReport(cmd *cobra.Command, rootOpts *RootOptions, opts *reportOptions) error {
	cfg, err := rootOpts.load()
	if err != nil {
		return err
	}
	q, err := opts.query()
	if err != nil {
		return err
	}
	logger := rootOpts.logger(cmd)
	loc := cfg.Location()
	var fetcher feed.Fetcher = feed.NewCascadeFromConfig(cfg, logger)
	if opts.File != "" {
		// --watch re-reads the file, never the feed.
		fetcher = feed.NewCascade(0, false, logger, feed.FileSource{Path: opts.File})
	}
	loader := feed.NewLoader(fetcher, incidents.NewNormalizer(loc), dashboard.NewIncidentStore(loc), logger)

	ctx := cmd.Context()
	if opts.File != "" {
		if _, err := loader.LoadFile(opts.File); err != nil {
			return err
		}
	} else if _, err := loader.Refresh(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printReport(out, loader, q, opts, time.Now(), logger); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	every := opts.Every
	if every <= 0 {
		every = cfg.AutoRefresh()
	}
	if every <= 0 {
		return fmt.Errorf("--watch needs --every or feed.auto_refresh_minutes")
	}
	logger.Printf("report: refreshing every %s", every)
	loader.Run(ctx, every, func(feed.Result) {
		if err := printReport(out, loader, q, opts, time.Now(), logger); err != nil {
			logger.Errorf("report: %v", err)
		}
	})
	return nil
}

// printReport applies q to the loaded data, prints the summary and writes
// the requested exports.
func printReport(out io.Writer, loader *feed.Loader, q dashboard.Query, opts *reportOptions, now time.Time, logger *utils.Logger) error {
	var err error
	loader.View(func(s *dashboard.IncidentStore) {
		q.Apply(s)
		if err = dashboard.RenderSummaryText(out, dashboard.BuildSummary(s, now)); err != nil {
			return
		}
		rows := dashboard.ExportRows(s.Filtered())
		if opts.XLSX != "" {
			if err = writeExport(opts.XLSX, rows, dashboard.WriteExcel); err != nil {
				return
			}
			logger.Printf("report: %d rows written to %s", len(rows), opts.XLSX)
		}
		if opts.CSV != "" {
			if err = writeExport(opts.CSV, rows, dashboard.WriteCSV); err != nil {
				return
			}
			logger.Printf("report: %d rows written to %s", len(rows), opts.CSV)
		}
	})
	return err
}

func writeExport(path string, rows []dashboard.ExportRow, write func(io.Writer, []dashboard.ExportRow) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
