package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"StockSignal/internal/collector"
	"StockSignal/internal/metrics"
	"StockSignal/internal/model"
	"StockSignal/internal/predictor"
	"StockSignal/internal/sentiment"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAnalyzer(f collector.Fetcher, src sentiment.Source, m *metrics.Metrics) *Analyzer {
	a := New(f, src, DefaultSettings(), quietLogger(), m)
	a.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	a.newID = func() string { return "run-1" }
	return a
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Headlines(context.Context, string) ([]sentiment.Headline, error) {
	return nil, errors.New("feed down")
}

func isRounded(v float64) bool {
	return math.Abs(v*100-math.Round(v*100)) < 1e-6
}

func TestAnalyzeProducesReport(t *testing.T) {
	m := metrics.NewMetrics()
	a := newTestAnalyzer(&collector.MockFetcher{Price: 100}, nil, m)

	report, err := a.Analyze(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if report.Ticker != "AAPL" || report.RunID != "run-1" {
		t.Errorf("ticker=%q run_id=%q", report.Ticker, report.RunID)
	}
	if len(report.Data) != 365 {
		t.Errorf("data rows = %d, want 365", len(report.Data))
	}
	if len(report.TopSignals) != 5 {
		t.Fatalf("top signals = %d, want 5", len(report.TopSignals))
	}
	for i := 1; i < len(report.TopSignals); i++ {
		if report.TopSignals[i].Score > report.TopSignals[i-1].Score {
			t.Errorf("top signals not sorted: %+v", report.TopSignals)
		}
	}
	if len(report.Backtest) > 5 {
		t.Errorf("backtest trades = %d, want at most 5", len(report.Backtest))
	}
	if report.PredictedPrice == nil {
		t.Fatal("predicted price missing")
	}
	for _, row := range report.Data {
		for _, v := range []float64{row.Close, row.MAShort, row.MALong, row.RSI, row.BBUpper, row.BBLower, row.Support, row.Resistance, row.ATR} {
			if !model.IsFinite(v) || !isRounded(v) {
				t.Fatalf("row %s has unrounded or undefined value %v", row.Date, v)
			}
		}
		if row.Score < -1 || row.Score > 5 {
			t.Fatalf("score %d out of range", row.Score)
		}
	}
	if report.Sentiment != 0 {
		t.Errorf("sentiment without a source = %v, want 0", report.Sentiment)
	}
	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok analyses = %v, want 1", got)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	series := model.NewPriceSeries("AAPL", collector.GenerateMockBars(50, 400))
	a := newTestAnalyzer(&collector.MockFetcher{Series: series}, nil, nil)

	r1, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	r2, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if *r1.PredictedPrice != *r2.PredictedPrice || r1.MSE != r2.MSE || len(r1.Backtest) != len(r2.Backtest) {
		t.Error("repeated analysis differs")
	}
	for i := range r1.Data {
		if r1.Data[i] != r2.Data[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, r1.Data[i], r2.Data[i])
		}
	}
}

func TestAnalyzeReportCarriesScoredRows(t *testing.T) {
	series := model.NewPriceSeries("AAPL", collector.GenerateMockBars(50, 400))
	a := newTestAnalyzer(&collector.MockFetcher{Series: series}, nil, nil)

	report, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rows) != 400 {
		t.Fatalf("expected every scored bar, got %d", len(report.Rows))
	}
	last := report.Rows[len(report.Rows)-1]
	if got := report.Data[len(report.Data)-1]; got.Score != last.Score || got.Close != round2(last.Close) {
		t.Errorf("payload tail %+v does not match scored row %+v", got, last)
	}
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), `"Rows"`) || strings.Contains(string(raw), `"IndicatorRow"`) {
		t.Error("scored rows leaked into the JSON payload")
	}
}

func TestAnalyzeRequiresTicker(t *testing.T) {
	a := newTestAnalyzer(&collector.MockFetcher{Price: 100}, nil, nil)
	if _, err := a.Analyze(context.Background(), "  "); !errors.Is(err, ErrNoTicker) {
		t.Fatalf("expected ErrNoTicker, got %v", err)
	}
}

func TestAnalyzeFetchError(t *testing.T) {
	down := errors.New("feed down")
	m := metrics.NewMetrics()
	a := newTestAnalyzer(&collector.MockFetcher{Err: down}, nil, m)

	_, err := a.Analyze(context.Background(), "AAPL")
	if !errors.Is(err, down) || !errors.Is(err, ErrFetch) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("mock")); got != 1 {
		t.Errorf("fetch errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error analyses = %v, want 1", got)
	}
}

func TestAnalyzeShortHistory(t *testing.T) {
	series := model.NewPriceSeries("X", collector.GenerateMockBars(100, 15))
	a := newTestAnalyzer(&collector.MockFetcher{Series: series}, nil, nil)

	_, err := a.Analyze(context.Background(), "X")
	var ih *model.InsufficientHistoryError
	if !errors.As(err, &ih) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}
	if ih.Need != 10 || ih.Have != 0 {
		t.Errorf("have=%d need=%d", ih.Have, ih.Need)
	}
}

func TestAnalyzeMissingClose(t *testing.T) {
	series := model.NewPriceSeries("X", collector.GenerateMockBars(100, 100))
	series.Columns = model.HasOpen | model.HasHigh | model.HasLow | model.HasVolume
	a := newTestAnalyzer(&collector.MockFetcher{Series: series}, nil, nil)

	_, err := a.Analyze(context.Background(), "X")
	var mc *model.MissingColumnError
	if !errors.As(err, &mc) || mc.Column != model.ColumnClose {
		t.Fatalf("expected missing close column, got %v", err)
	}
}

func TestAnalyzeSeriesRejectsUnorderedIndex(t *testing.T) {
	bars := collector.GenerateMockBars(100, 60)
	bars[10], bars[11] = bars[11], bars[10]
	a := newTestAnalyzer(&collector.MockFetcher{}, nil, nil)

	_, err := a.AnalyzeSeries(context.Background(), "X", model.NewPriceSeries("X", bars))
	var ie *model.IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func TestAnalyzeSeriesDoesNotModifyInput(t *testing.T) {
	bars := collector.GenerateMockBars(100, 120)
	bars[50].Close = math.NaN()
	series := model.NewPriceSeries("X", bars)
	a := newTestAnalyzer(&collector.MockFetcher{}, nil, nil)

	if _, err := a.AnalyzeSeries(context.Background(), "X", series); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(series.Bars[50].Close) {
		t.Error("input series was modified")
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	src := &sentiment.StaticSource{ByTicker: map[string][]sentiment.Headline{
		"AAPL": {{Title: "up", Sentiment: 0.5}, {Title: "down", Sentiment: -0.1}},
	}}
	a := newTestAnalyzer(&collector.MockFetcher{Price: 100}, src, nil)
	report, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if report.Sentiment != 0.2 {
		t.Errorf("sentiment = %v, want 0.2", report.Sentiment)
	}
	if len(report.News) != 2 || report.News[0].Title != "up" || report.News[1].Sentiment != -0.1 {
		t.Errorf("news = %+v", report.News)
	}

	a = newTestAnalyzer(&collector.MockFetcher{Price: 100}, failingSource{}, nil)
	report, err = a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("sentiment failure must not fail the analysis: %v", err)
	}
	if report.Sentiment != 0 {
		t.Errorf("sentiment = %v, want 0", report.Sentiment)
	}
	if report.News != nil {
		t.Errorf("news = %+v, want none", report.News)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := newTestAnalyzer(&collector.MockFetcher{Price: 100}, nil, nil)
	if _, err := a.Analyze(ctx, "AAPL"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildReportTradeStatus(t *testing.T) {
	scored := []model.ScoredRow{{IndicatorRow: model.IndicatorRow{OHLCV: model.OHLCV{
		Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 123.456,
	}}}}
	in := reportInput{
		ticker:   "MSFT",
		scored:   scored,
		fit:      fitResult(),
		forecast: 140,
		action:   model.ActionBuy,
		cfg:      DefaultConfig(),
	}
	r := buildReport(in)
	if r.TradeStatus != "Mock buy of MSFT at $123.46" {
		t.Errorf("trade status = %q", r.TradeStatus)
	}

	in.cfg.MockTrading = false
	if r := buildReport(in); r.TradeStatus != "" {
		t.Errorf("trade status without mock trading = %q", r.TradeStatus)
	}

	in.cfg.MockTrading = true
	in.action = model.ActionNone
	if r := buildReport(in); r.TradeStatus != "" || !strings.Contains(r.Data[0].Date, "2024-01-02") {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestTopSignalsStableOnTies(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	scores := []int{1, 3, 2, 3, 0, 3}
	rows := make([]model.ScoredRow, len(scores))
	for i, s := range scores {
		rows[i].Time = base.AddDate(0, 0, i)
		rows[i].Close = float64(i)
		rows[i].Score = s
	}
	top := topSignals(rows, 4)
	want := []float64{1, 3, 5, 2}
	for i, w := range want {
		if top[i].Close != w {
			t.Fatalf("top signals order = %+v, want closes %v", top, want)
		}
	}
	if len(topSignals(rows, 10)) != len(rows) {
		t.Error("n beyond length should return every row")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{2.675, 2.68},
		{-2.675, -2.68},
		{1.004, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVolatilityNeedsFullWindow(t *testing.T) {
	closes := []float64{1, 2, 3, 4, math.NaN(), 6, 7, 8}
	vol := Volatility(closes, 3)
	for i, want := range []bool{false, false, true, true, false, false, false, true} {
		if model.IsFinite(vol[i]) != want {
			t.Errorf("vol[%d] = %v, defined want %v", i, vol[i], want)
		}
	}
	if math.Abs(vol[2]-1) > 1e-12 {
		t.Errorf("vol[2] = %v, want 1", vol[2])
	}
}

func TestLaggedReturn(t *testing.T) {
	lr := LaggedReturn([]float64{100, 110, 99})
	if !math.IsNaN(lr[0]) || math.Abs(lr[1]-0.1) > 1e-12 || math.Abs(lr[2]+0.1) > 1e-12 {
		t.Errorf("lagged returns = %v", lr)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	c := DefaultConfig()
	c.VolatilityWindow = 1
	if err := c.Validate(); err == nil {
		t.Error("expected error for volatility window 1")
	}
}

func fitResult() predictor.Result {
	m, _ := predictor.FitMean([]predictor.Sample{{Y: 1}})
	return predictor.Result{Model: m}
}
