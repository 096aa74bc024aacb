package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"StockSignal/internal/export"
	"StockSignal/internal/model"
	"StockSignal/internal/notifier"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		jsonOut    bool
		parquetDir string
		record     bool
	)
	cmd := &cobra.Command{
		Use:   "analyze TICKER [TICKER...]",
		Short: "Run a one-shot analysis and print the report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			rec := a.openRecorder()
			defer rec.Close()

			ctx := cmd.Context()
			var failed []string
			for _, ticker := range args {
				ticker = strings.ToUpper(ticker)
				report, err := a.analyzer.Analyze(ctx, ticker)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), notifier.FormatError(ticker, err))
					failed = append(failed, ticker)
					continue
				}
				if record {
					if err := rec.RecordAnalysis(ctx, report); err != nil {
						a.log.WithError(err).Error("record analysis")
					}
				}
				if jsonOut {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if err := enc.Encode(report); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatReport(report))
				}
				if parquetDir != "" {
					if err := exportParquet(report, parquetDir); err != nil {
						return err
					}
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("analysis failed for %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&parquetDir, "parquet-dir", "", "Also write the scored rows to {dir}/{TICKER}.parquet")
	cmd.Flags().BoolVar(&record, "record", false, "Store the analysis in the SQLite history")
	return cmd
}

// exportParquet writes the scored rows the report was built from, so the
// file always matches the printed analysis.
func exportParquet(report *model.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parquet directory: %w", err)
	}
	return export.WriteScoredRows(filepath.Join(dir, report.Ticker+".parquet"), report.Ticker, report.Rows)
}
