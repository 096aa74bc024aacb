package recorder

import (
	"context"

	"StockSignal/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(context.Context, *model.Report) error { return nil }
func (n *NoopRecorder) RecentAnalyses(context.Context, string, int) ([]AnalysisRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
