// Package recorder persists analysis history.
package recorder

import (
	"context"
	"time"

	"StockSignal/internal/model"
)

// AnalysisRecord is one stored analysis run.
type AnalysisRecord struct {
	RunID          string
	Timestamp      time.Time
	Ticker         string
	LastClose      float64
	Score          int
	PredictedPrice float64
	MSE            float64
	Model          string
	TradeAction    model.TradeAction
	Sentiment      float64
	TotalTrades    int
	WinRate        float64
	AvgReturnPct   float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAnalysis(ctx context.Context, report *model.Report) error
	RecentAnalyses(ctx context.Context, ticker string, limit int) ([]AnalysisRecord, error)
	Close() error
}

// recordFromReport flattens a report into its stored row.
func recordFromReport(r *model.Report) AnalysisRecord {
	rec := AnalysisRecord{
		RunID:        r.RunID,
		Timestamp:    r.GeneratedAt,
		Ticker:       r.Ticker,
		LastClose:    r.LastClose(),
		MSE:          r.MSE,
		Model:        r.ModelName,
		TradeAction:  r.TradeAction,
		Sentiment:    r.Sentiment,
		TotalTrades:  r.Summary.TotalTrades,
		WinRate:      r.Summary.WinRate,
		AvgReturnPct: r.Summary.AvgReturnPct,
	}
	if n := len(r.Data); n > 0 {
		rec.Score = r.Data[n-1].Score
	}
	if r.PredictedPrice != nil {
		rec.PredictedPrice = *r.PredictedPrice
	}
	return rec
}
