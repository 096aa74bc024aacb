package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"StockSignal/internal/model"
	"StockSignal/internal/predictor"
	"StockSignal/internal/sentiment"
)

const dateLayout = "2006-01-02"

type reportInput struct {
	ticker    string
	runID     string
	generated time.Time
	scored    []model.ScoredRow
	trades    []model.TradeRecord
	summary   model.BacktestSummary
	fit       predictor.Result
	forecast  float64
	sentiment float64
	headlines []sentiment.Headline
	action    model.TradeAction
	rules     []model.RuleHit
	cfg       Config
}

func buildReport(in reportInput) *model.Report {
	r := &model.Report{
		RunID:       in.runID,
		Ticker:      in.ticker,
		GeneratedAt: in.generated,
		MSE:         round2(in.fit.MSE),
		ModelName:   in.fit.Model.Name(),
		Data:        reportRows(tail(in.scored, in.cfg.DisplayRows)),
		TopSignals:  topSignals(in.scored, in.cfg.TopSignals),
		Backtest:    reportTrades(lastTrades(in.trades, in.cfg.LastTrades)),
		Summary:     roundSummary(in.summary),
		Sentiment:   round2(in.sentiment),
		News:        newsItems(in.headlines),
		TradeAction: in.action,
		Latest:      in.rules,
		Rows:        in.scored,
	}
	if model.IsFinite(in.forecast) {
		p := round2(in.forecast)
		r.PredictedPrice = &p
	}
	if in.cfg.MockTrading && in.action != model.ActionNone {
		r.TradeStatus = fmt.Sprintf("Mock %s of %s at $%.2f", in.action, in.ticker, r.LastClose())
	}
	return r
}

// round2 rounds half away from zero at two decimals; NaN and infinities become 0.
func round2(v float64) float64 {
	if !model.IsFinite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func newsItems(hs []sentiment.Headline) []model.NewsItem {
	if len(hs) == 0 {
		return nil
	}
	out := make([]model.NewsItem, len(hs))
	for i, h := range hs {
		out[i] = model.NewsItem{Title: h.Title, Link: h.Link, Sentiment: round2(h.Sentiment)}
	}
	return out
}

func tail(rows []model.ScoredRow, n int) []model.ScoredRow {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func reportRows(rows []model.ScoredRow) []model.ReportRow {
	out := make([]model.ReportRow, len(rows))
	for i, r := range rows {
		spike := 0
		if r.VolumeSpike {
			spike = 1
		}
		out[i] = model.ReportRow{
			Date:        r.Time.Format(dateLayout),
			Close:       round2(r.Close),
			MAShort:     round2(r.MAShort),
			MALong:      round2(r.MALong),
			RSI:         round2(r.RSI),
			BBUpper:     round2(r.BBUpper),
			BBLower:     round2(r.BBLower),
			VolumeSpike: spike,
			Support:     round2(r.Support),
			Resistance:  round2(r.Resistance),
			ATR:         round2(r.ATR),
			Score:       r.Score,
		}
	}
	return out
}

// topSignals returns the n highest scores; ties keep chronological order.
func topSignals(rows []model.ScoredRow, n int) []model.TopSignal {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return rows[idx[a]].Score > rows[idx[b]].Score })
	if n < len(idx) {
		idx = idx[:n]
	}
	out := make([]model.TopSignal, len(idx))
	for i, j := range idx {
		out[i] = model.TopSignal{
			Date:  rows[j].Time.Format(dateLayout),
			Close: round2(rows[j].Close),
			Score: rows[j].Score,
		}
	}
	return out
}

func lastTrades(trades []model.TradeRecord, n int) []model.TradeRecord {
	if len(trades) <= n {
		return trades
	}
	return trades[len(trades)-n:]
}

func reportTrades(trades []model.TradeRecord) []model.ReportTrade {
	out := make([]model.ReportTrade, len(trades))
	for i, t := range trades {
		out[i] = model.ReportTrade{
			BuyDate:    t.EntryDate.Format(dateLayout),
			BuyPrice:   round2(t.EntryPrice),
			SellDate:   t.ExitDate.Format(dateLayout),
			SellPrice:  round2(t.ExitPrice),
			ReturnPct:  round2(t.ReturnPct),
			ExitReason: string(t.ExitReason),
		}
	}
	return out
}

func roundSummary(s model.BacktestSummary) model.BacktestSummary {
	s.WinRate = round2(s.WinRate)
	s.AvgReturnPct = round2(s.AvgReturnPct)
	s.BestPct = round2(s.BestPct)
	s.WorstPct = round2(s.WorstPct)
	return s
}
