package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"StockSignal/internal/analyzer"
	"StockSignal/internal/collector"
	"StockSignal/internal/export"
	"StockSignal/internal/model"
)

func TestExportParquetUsesAnalyzedRows(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	f := &collector.MockFetcher{Series: model.NewPriceSeries("AAPL", collector.GenerateMockBars(50, 200))}
	a := analyzer.New(f, nil, analyzer.DefaultSettings(), log, nil)

	report, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "out")
	if err := exportParquet(report, dir); err != nil {
		t.Fatalf("exportParquet: %v", err)
	}
	if f.Calls != 1 {
		t.Errorf("expected a single fetch, got %d", f.Calls)
	}

	points, err := export.ReadScoredPoints(filepath.Join(dir, "AAPL.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != len(report.Rows) {
		t.Fatalf("exported %d rows, report has %d", len(points), len(report.Rows))
	}
	if last := points[len(points)-1]; int(last.Score) != report.Rows[len(report.Rows)-1].Score {
		t.Errorf("last exported score %v, want %d", last.Score, report.Rows[len(report.Rows)-1].Score)
	}
}
