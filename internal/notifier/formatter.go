package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"StockSignal/internal/model"
	"StockSignal/internal/recorder"
)

// FormatReport renders an analysis report as a Telegram HTML message.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(r.Ticker), r.GeneratedAt.Format("2006-01-02 15:04")))

	if n := len(r.Data); n > 0 {
		last := r.Data[n-1]
		b.WriteString(fmt.Sprintf("Close: %.2f (%s)\n", last.Close, last.Date))
		b.WriteString(fmt.Sprintf("MA short/long: %.2f / %.2f\n", last.MAShort, last.MALong))
		b.WriteString(fmt.Sprintf("RSI: %.1f | ATR: %.2f\n", last.RSI, last.ATR))
		b.WriteString(fmt.Sprintf("Bands: %.2f / %.2f\n", last.BBLower, last.BBUpper))
		b.WriteString(fmt.Sprintf("Support/resistance: %.2f / %.2f\n\n", last.Support, last.Resistance))
		b.WriteString(fmt.Sprintf("🎯 <b>Score: %+d</b>\n", last.Score))
	}
	for _, hit := range r.Latest {
		b.WriteString(fmt.Sprintf("  %s %+d (%s)\n", hit.Name, hit.Points, html.EscapeString(hit.Commentary)))
	}

	if r.PredictedPrice != nil {
		b.WriteString(fmt.Sprintf("\n🔮 Forecast: %.2f (model %s, mse %.2f)\n", *r.PredictedPrice, r.ModelName, r.MSE))
	}
	if r.TradeAction != model.ActionNone {
		b.WriteString(fmt.Sprintf("💡 Hint: <b>%s</b>\n", strings.ToUpper(string(r.TradeAction))))
	}
	if r.TradeStatus != "" {
		b.WriteString(html.EscapeString(r.TradeStatus) + "\n")
	}
	if r.Sentiment != 0 {
		b.WriteString(fmt.Sprintf("📰 Sentiment: %+.2f\n", r.Sentiment))
	}

	s := r.Summary
	b.WriteString(fmt.Sprintf("\n📈 <b>Backtest</b>: %d trades, win rate %.0f%%, avg %+.2f%%\n",
		s.TotalTrades, s.WinRate*100, s.AvgReturnPct))
	for _, t := range r.Backtest {
		b.WriteString(fmt.Sprintf("  %s %.2f → %s %.2f (%+.2f%%, %s)\n",
			t.BuyDate, t.BuyPrice, t.SellDate, t.SellPrice, t.ReturnPct, t.ExitReason))
	}

	if len(r.TopSignals) > 0 {
		b.WriteString("\n🏆 <b>Top signals</b>\n")
		for _, sig := range r.TopSignals {
			b.WriteString(fmt.Sprintf("  %s %.2f score %+d\n", sig.Date, sig.Close, sig.Score))
		}
	}
	return b.String()
}

// FormatHistory renders stored runs, newest first.
func FormatHistory(ticker string, recs []recorder.AnalysisRecord) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No stored analyses for %s", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(ticker)))
	for _, rec := range recs {
		action := string(rec.TradeAction)
		if action == "" {
			action = "-"
		}
		b.WriteString(fmt.Sprintf("%s close %.2f score %+d forecast %.2f %s\n",
			rec.Timestamp.Format("2006-01-02"), rec.LastClose, rec.Score, rec.PredictedPrice, action))
	}
	return b.String()
}

// FormatError renders a failed analysis.
func FormatError(ticker string, err error) string {
	return fmt.Sprintf("⚠️ <b>%s</b> analysis failed: %s", html.EscapeString(ticker), html.EscapeString(err.Error()))
}

// FormatFill renders an executed paper order.
func FormatFill(f model.Fill) string {
	msg := fmt.Sprintf("🧾 Paper %s %.0f %s @ %.2f, cash %.2f", f.Action, f.Shares, html.EscapeString(f.Ticker), f.Price, f.CashAfter)
	if f.Action == model.ActionSell {
		msg += fmt.Sprintf(", realized %+.2f", f.RealizedPnL)
	}
	return msg
}

// FormatPortfolio formats the paper account for display.
func FormatPortfolio(state model.PortfolioState) string {
	var b strings.Builder
	b.WriteString("📦 <b>Paper portfolio</b>\n\n")
	b.WriteString(fmt.Sprintf("Starting cash: %.2f\n", state.StartingCash))
	b.WriteString(fmt.Sprintf("Cash: %.2f\n", state.Cash))
	b.WriteString(fmt.Sprintf("Realized P&amp;L: %+.2f\n", state.RealizedPnL))

	tickers := make([]string, 0, len(state.Positions))
	for t := range state.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	if len(tickers) == 0 {
		b.WriteString("No open positions\n")
	}
	for _, t := range tickers {
		p := state.Positions[t]
		b.WriteString(fmt.Sprintf("  %s: %.0f @ %.2f\n", html.EscapeString(t), p.Shares, p.AvgPrice))
	}
	if !state.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s\n", state.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}
