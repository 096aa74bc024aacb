package model

import "time"

// ExitReason indicates which condition closed a simulated trade.
type ExitReason string

const (
	ExitTakeProfit ExitReason = "take_profit"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTime       ExitReason = "time"
)

// TradeRecord is the outcome of one simulated trade.
type TradeRecord struct {
	EntryIndex  int
	EntryDate   time.Time
	EntryPrice  float64
	ExitIndex   int
	ExitDate    time.Time
	ExitPrice   float64
	ExitReason  ExitReason
	HoldingDays int
	ReturnPct   float64
}

// BacktestSummary aggregates a set of trade records.
type BacktestSummary struct {
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgReturnPct float64 `json:"avg_return_pct"`
	BestPct      float64 `json:"best_pct"`
	WorstPct     float64 `json:"worst_pct"`
	TakeProfits  int     `json:"take_profits"`
	StopLosses   int     `json:"stop_losses"`
	TimeExits    int     `json:"time_exits"`
}
