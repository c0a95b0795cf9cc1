package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonaycp/my-timesheet/internal/exporter"
	"github.com/jonaycp/my-timesheet/internal/importer"
	"github.com/jonaycp/my-timesheet/internal/model"
	"github.com/jonaycp/my-timesheet/internal/parser"
	"github.com/jonaycp/my-timesheet/internal/source"
	"github.com/jonaycp/my-timesheet/internal/view"
)

var extractFlags struct {
	file  string
	link  string
	query string
	sheet string
	mode  string
	month string
	focus string
	order string
	out   string
}

// extractCmd prints the weekly view for one name
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print one person's assignments grouped by week",
	Long: `Reads a roster from --file (or --link), finds every cell that mentions
--query and prints the assignments grouped by week and day.

Example:
  timesheet extract --file roster.xlsx --query Magda --mode selected --month 2024-06 --out magda.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractFlags.file, "file", "f", "", "roster workbook (.xlsx, .xlsm, .xls)")
	f.StringVar(&extractFlags.link, "link", "", "shared roster link (Google Sheets, Drive, Dropbox or direct URL)")
	f.StringVarP(&extractFlags.query, "query", "q", "", "name to look for (default from config)")
	f.StringVar(&extractFlags.sheet, "sheet", "", "sheet name (default: Směny, else the first sheet)")
	f.StringVar(&extractFlags.mode, "mode", "", "month mode: latest|selected|all")
	f.StringVar(&extractFlags.month, "month", "", "month for --mode selected, e.g. 2024-06")
	f.StringVar(&extractFlags.focus, "focus", "month", "range: month|this-week|next-week")
	f.StringVar(&extractFlags.order, "order", "", "order: asc|desc")
	f.StringVarP(&extractFlags.out, "out", "o", "", "write the flat table to this .xlsx file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := extractOptions()
	if err != nil {
		return err
	}

	src, err := loadSource(cmd)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(extractFlags.query)
	if query == "" {
		query = cfg.Roster.DefaultQuery
	}

	coordinator := importer.NewCoordinator(logger.Named("roster"), parser.NormalizeOptions{
		MissingLabel: cfg.Roster.MissingLabel,
	})
	coordinator.SetPreferredSheet(cfg.Roster.PreferredSheet)

	result, err := coordinator.Process(cmd.Context(), importer.Request{
		Source: src,
		Sheet:  extractFlags.sheet,
		Query:  query,
		View:   opts,
	})
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)

	if extractFlags.out != "" && !result.Empty() {
		if err := writeExport(extractFlags.out, result.Records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %s\n", extractFlags.out)
	}
	return nil
}

// extractOptions 命令行参数优先，其次为配置
func extractOptions() (view.Options, error) {
	mode := extractFlags.mode
	if mode == "" {
		mode = cfg.Roster.Mode
		if extractFlags.month != "" {
			mode = string(view.MonthSelected)
		}
	}
	order := extractFlags.order
	if order == "" {
		order = cfg.Roster.Order
	}

	opts := view.Options{}
	var err error
	if opts.Month, err = view.ParseMonthMode(mode); err != nil {
		return opts, err
	}
	if opts.Focus, err = view.ParseFocus(extractFlags.focus); err != nil {
		return opts, err
	}
	if opts.Order, err = view.ParseOrder(order); err != nil {
		return opts, err
	}
	if extractFlags.month != "" {
		if opts.Selected, err = model.ParseYearMonth(extractFlags.month); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func loadSource(cmd *cobra.Command) (*source.Source, error) {
	switch {
	case extractFlags.file != "":
		data, err := os.ReadFile(extractFlags.file)
		if err != nil {
			return nil, err
		}
		return source.FromUpload(filepath.Base(extractFlags.file), data, cfg.Source.MaxBytes)
	case extractFlags.link != "":
		st, err := openStore()
		if err != nil {
			return nil, err
		}
		defer st.Close()

		resolver := source.NewResolver(source.Options{
			Timeout:       cfg.Source.Timeout.Duration,
			MaxBytes:      cfg.Source.MaxBytes,
			Attempts:      cfg.Source.Attempts,
			RatePerSecond: cfg.Source.RatePerSecond,
			Cache:         st,
			Logger:        logger.Named("source"),
		})
		return resolver.Fetch(cmd.Context(), extractFlags.link)
	}
	return nil, fmt.Errorf("either --file or --link is required")
}

// printResult 按周/天输出
func printResult(w io.Writer, result *importer.Result) {
	fmt.Fprintf(w, "Sheet: %s\n", result.Sheet)
	fmt.Fprintln(w, result.Message)
	if result.Empty() {
		return
	}
	v := result.View
	fmt.Fprintf(w, "Days: %d  Assignments: %d  Places: %d\n", v.DistinctDays, v.TotalEntries, v.DistinctPlaces)

	for _, week := range v.Weeks {
		fmt.Fprintf(w, "\nWeek of %s\n", week.Label)
		for _, day := range week.Days {
			fmt.Fprintf(w, "  %s\n", day.Label)
			for _, e := range day.Entries {
				fmt.Fprintf(w, "    %s | %s: %s\n", e.Place, e.Shift, e.CellText)
			}
		}
	}
}

func writeExport(path string, records []model.MatchRecord) error {
	f, err := exporter.Export(exporter.ExportOptions{Records: records})
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
