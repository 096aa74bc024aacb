package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockSignal/internal/calculator"
	"StockSignal/internal/model"
	"StockSignal/internal/strategy"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func scoredRows(closes []float64, scores []int) []model.ScoredRow {
	rows := make([]model.ScoredRow, len(closes))
	for i, c := range closes {
		rows[i].Time = day0.AddDate(0, 0, i)
		rows[i].Close = c
		if i < len(scores) {
			rows[i].Score = scores[i]
		}
	}
	return rows
}

func TestSimulate_TakeProfitWinsTie(t *testing.T) {
	rows := scoredRows([]float64{100, 100, 100, 100, 100}, []int{5})
	cfg := Config{HoldingDays: 3, MinScore: 1, StopLossPct: 0, TakeProfitPct: 0}

	trades, err := Simulate(rows, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ExitReason != model.ExitTakeProfit {
		t.Errorf("expected take-profit exit, got %s", tr.ExitReason)
	}
	if tr.ExitIndex != 1 || tr.ExitPrice != 100 {
		t.Errorf("expected exit at index 1 price 100, got %d/%.2f", tr.ExitIndex, tr.ExitPrice)
	}
}

func TestSimulate_TimeExitOnFlatSeries(t *testing.T) {
	closes := make([]float64, 12)
	for i := range closes {
		closes[i] = 100
	}
	rows := scoredRows(closes, []int{5})
	cfg := Config{HoldingDays: 4, MinScore: 4.5, StopLossPct: 5, TakeProfitPct: 10}

	trades, err := Simulate(rows, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ExitReason != model.ExitTime || tr.ExitIndex != 4 {
		t.Errorf("expected time exit at index 4, got %s at %d", tr.ExitReason, tr.ExitIndex)
	}
	if tr.ExitPrice != rows[4].Close || tr.ReturnPct != 0 {
		t.Errorf("expected exit at close %.2f with 0%% return, got %.2f/%.2f", rows[4].Close, tr.ExitPrice, tr.ReturnPct)
	}
	if !tr.ExitDate.Equal(rows[4].Time) {
		t.Errorf("unexpected exit date %v", tr.ExitDate)
	}
}

func TestSimulate_StopLoss(t *testing.T) {
	rows := scoredRows([]float64{100, 99, 94, 120, 120}, []int{5})
	trades, err := Simulate(rows, Config{HoldingDays: 3, MinScore: 1, StopLossPct: 5, TakeProfitPct: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := trades[0]
	if tr.ExitReason != model.ExitStopLoss || math.Abs(tr.ExitPrice-95) > 1e-9 || tr.ExitIndex != 2 {
		t.Errorf("expected stop-loss at 95 on index 2, got %s %.2f %d", tr.ExitReason, tr.ExitPrice, tr.ExitIndex)
	}
	if math.Abs(tr.ReturnPct+5) > 1e-9 {
		t.Errorf("expected -5%% return, got %.4f", tr.ReturnPct)
	}
}

func TestSimulate_EntryBoundAndOverlap(t *testing.T) {
	n, h := 20, 5
	closes := make([]float64, n)
	scores := make([]int, n)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
		scores[i] = 5
	}
	trades, err := Simulate(scoredRows(closes, scores), Config{HoldingDays: h, MinScore: 4.5, StopLossPct: 5, TakeProfitPct: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != n-h {
		t.Fatalf("expected %d overlapping trades, got %d", n-h, len(trades))
	}
	for _, tr := range trades {
		if tr.EntryIndex >= n-h {
			t.Errorf("entry at %d is within holding window of the series end", tr.EntryIndex)
		}
	}
}

func TestSimulate_ShortSeries(t *testing.T) {
	rows := scoredRows([]float64{100, 101, 102}, []int{5, 5, 5})

	_, err := Simulate(rows, DefaultConfig())
	var ihe *model.InsufficientHistoryError
	if !errors.As(err, &ihe) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}

	trades := Run(rows, DefaultConfig())
	if trades == nil || len(trades) != 0 {
		t.Errorf("expected empty non-nil result, got %v", trades)
	}
}

func TestSimulate_UnorderedIndex(t *testing.T) {
	rows := scoredRows([]float64{100, 101, 102, 103}, nil)
	rows[2].Time = rows[1].Time

	_, err := Simulate(rows, Config{HoldingDays: 2, MinScore: 1, StopLossPct: 5, TakeProfitPct: 10})
	var ie *model.IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if got := Run(rows, Config{HoldingDays: 2, MinScore: 1}); len(got) != 0 {
		t.Errorf("expected empty result, got %d trades", len(got))
	}
}

func TestSimulate_MissingClose(t *testing.T) {
	rows := scoredRows([]float64{math.NaN(), math.NaN(), math.NaN()}, nil)
	_, err := Simulate(rows, Config{HoldingDays: 1, MinScore: 1})
	var mce *model.MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	closes := []float64{100, 104, 97, 111, 103, 99, 90, 95, 101, 108, 112, 96}
	scores := []int{5, 0, 5, 5, 0, 5, 5, 0, 5, 0, 0, 0}
	cfg := Config{HoldingDays: 3, MinScore: 4.5, StopLossPct: 5, TakeProfitPct: 10}
	a, _ := Simulate(scoredRows(closes, scores), cfg)
	b, _ := Simulate(scoredRows(closes, scores), cfg)
	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("trade %d differs between runs", i)
		}
	}
}

// 30 flat bars with a single dip to 90 at bar 5: the dip scores 2 (RSI
// collapse plus a close under the lower band) and the rebound to 100 on
// the next bar clears the 10% take-profit level.
func TestPipeline_DipScenario(t *testing.T) {
	bars := make([]model.OHLCV, 30)
	for i := range bars {
		c := 100.0
		if i == 5 {
			c = 90
		}
		bars[i] = model.OHLCV{Time: day0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	rows, err := calculator.Compute(model.NewPriceSeries("DIP", bars), calculator.DefaultConfig())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	scored := strategy.ScoreAll(rows, strategy.DefaultRules(), nil)
	if scored[5].Score != 2 {
		t.Fatalf("expected score 2 on the dip bar, got %d", scored[5].Score)
	}

	cfg := Config{HoldingDays: 5, MinScore: 2, StopLossPct: 5, TakeProfitPct: 10}
	trades, err := Simulate(scored, cfg)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected exactly 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.EntryIndex != 5 || tr.EntryPrice != 90 {
		t.Errorf("expected entry at bar 5 price 90, got %d/%.2f", tr.EntryIndex, tr.EntryPrice)
	}
	if tr.ExitReason != model.ExitTakeProfit || math.Abs(tr.ExitPrice-99) > 1e-9 {
		t.Errorf("expected take-profit exit at 99, got %s %.4f", tr.ExitReason, tr.ExitPrice)
	}
	if math.Abs(tr.ReturnPct-10) > 1e-9 {
		t.Errorf("expected 10%% return, got %.6f", tr.ReturnPct)
	}
}

func TestSummarize(t *testing.T) {
	trades := []model.TradeRecord{
		{ReturnPct: 10, ExitReason: model.ExitTakeProfit},
		{ReturnPct: -5, ExitReason: model.ExitStopLoss},
		{ReturnPct: 1, ExitReason: model.ExitTime},
		{ReturnPct: 0, ExitReason: model.ExitTime},
	}
	s := Summarize(trades)
	if s.TotalTrades != 4 || s.Wins != 2 || s.Losses != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.WinRate != 0.5 || s.AvgReturnPct != 1.5 {
		t.Errorf("unexpected rates: %+v", s)
	}
	if s.BestPct != 10 || s.WorstPct != -5 || s.TimeExits != 2 {
		t.Errorf("unexpected extremes: %+v", s)
	}
	if empty := Summarize(nil); empty.TotalTrades != 0 || empty.BestPct != 0 {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}
