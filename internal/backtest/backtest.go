// Package backtest simulates fixed-horizon trades on scored rows to measure
// how well the signal score predicts forward returns.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"StockSignal/internal/model"
)

const component = "backtest"

// Config controls entries and exits.
type Config struct {
	HoldingDays   int     `yaml:"holding_days"`
	MinScore      float64 `yaml:"min_score"`
	StopLossPct   float64 `yaml:"stop_loss_pct"`
	TakeProfitPct float64 `yaml:"take_profit_pct"`
}

// DefaultConfig returns the standard 10-day horizon settings.
func DefaultConfig() Config {
	return Config{
		HoldingDays:   10,
		MinScore:      4.5,
		StopLossPct:   5,
		TakeProfitPct: 10,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.HoldingDays <= 0 {
		return errors.New("backtest.holding_days must be positive")
	}
	if c.StopLossPct < 0 || c.StopLossPct >= 100 {
		return errors.New("backtest.stop_loss_pct must be in [0, 100)")
	}
	if c.TakeProfitPct < 0 {
		return errors.New("backtest.take_profit_pct must not be negative")
	}
	return nil
}

// Simulate runs the backtest and reports structural problems as typed errors.
//
// Rows with a NaN close are dropped first. Every row at position
// 0..n-HoldingDays-1 with Score >= MinScore opens an independent trade, so
// holding periods may overlap. Each following day up to HoldingDays is
// checked for the take-profit level first and the stop-loss level second;
// the first hit exits at that level. Otherwise the trade exits at the close
// HoldingDays bars after entry.
func Simulate(rows []model.ScoredRow, cfg Config) ([]model.TradeRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(rows) > 0 && !hasClose(rows) {
		return nil, &model.MissingColumnError{Component: component, Column: model.ColumnClose}
	}

	clean := dropUndefined(rows)
	if len(clean) < cfg.HoldingDays {
		return nil, &model.InsufficientHistoryError{Component: component, Have: len(clean), Need: cfg.HoldingDays}
	}
	if err := model.CheckIndex(clean, func(r model.ScoredRow) time.Time { return r.Time }); err != nil {
		return nil, err
	}

	var trades []model.TradeRecord
	for i := 0; i < len(clean)-cfg.HoldingDays; i++ {
		if float64(clean[i].Score) < cfg.MinScore {
			continue
		}
		trades = append(trades, simulateTrade(clean, i, cfg))
	}
	return trades, nil
}

// Run is Simulate for callers that treat "no backtest possible" as an empty
// result: structural problems are logged as warnings.
func Run(rows []model.ScoredRow, cfg Config) []model.TradeRecord {
	trades, err := Simulate(rows, cfg)
	if err != nil {
		logrus.WithField("rows", len(rows)).Warnf("backtest skipped: %v", err)
		return []model.TradeRecord{}
	}
	if trades == nil {
		trades = []model.TradeRecord{}
	}
	return trades
}

func simulateTrade(rows []model.ScoredRow, i int, cfg Config) model.TradeRecord {
	entry := rows[i].Close
	takeProfit := entry * (1 + cfg.TakeProfitPct/100)
	stopLoss := entry * (1 - cfg.StopLossPct/100)

	exitIdx := i + cfg.HoldingDays
	exitPrice := rows[exitIdx].Close
	reason := model.ExitTime

	for j := 1; j <= cfg.HoldingDays; j++ {
		price := rows[i+j].Close
		if price >= takeProfit {
			exitIdx, exitPrice, reason = i+j, takeProfit, model.ExitTakeProfit
			break
		}
		if price <= stopLoss {
			exitIdx, exitPrice, reason = i+j, stopLoss, model.ExitStopLoss
			break
		}
	}

	return model.TradeRecord{
		EntryIndex:  i,
		EntryDate:   rows[i].Time,
		EntryPrice:  entry,
		ExitIndex:   exitIdx,
		ExitDate:    rows[exitIdx].Time,
		ExitPrice:   exitPrice,
		ExitReason:  reason,
		HoldingDays: exitIdx - i,
		ReturnPct:   (exitPrice - entry) / entry * 100,
	}
}

func hasClose(rows []model.ScoredRow) bool {
	for _, r := range rows {
		if !math.IsNaN(r.Close) {
			return true
		}
	}
	return false
}

func dropUndefined(rows []model.ScoredRow) []model.ScoredRow {
	out := make([]model.ScoredRow, 0, len(rows))
	for _, r := range rows {
		if model.IsFinite(r.Close) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize aggregates trade outcomes.
func Summarize(trades []model.TradeRecord) model.BacktestSummary {
	s := model.BacktestSummary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return s
	}
	s.BestPct = math.Inf(-1)
	s.WorstPct = math.Inf(1)
	sum := 0.0
	for _, t := range trades {
		sum += t.ReturnPct
		if t.ReturnPct > 0 {
			s.Wins++
		} else if t.ReturnPct < 0 {
			s.Losses++
		}
		s.BestPct = math.Max(s.BestPct, t.ReturnPct)
		s.WorstPct = math.Min(s.WorstPct, t.ReturnPct)
		switch t.ExitReason {
		case model.ExitTakeProfit:
			s.TakeProfits++
		case model.ExitStopLoss:
			s.StopLosses++
		default:
			s.TimeExits++
		}
	}
	s.AvgReturnPct = sum / float64(len(trades))
	s.WinRate = float64(s.Wins) / float64(len(trades))
	return s
}

// String renders a one-line summary for logs.
func String(s model.BacktestSummary) string {
	return fmt.Sprintf("trades=%d wins=%d losses=%d win_rate=%.0f%% avg=%+.2f%%",
		s.TotalTrades, s.Wins, s.Losses, s.WinRate*100, s.AvgReturnPct)
}
