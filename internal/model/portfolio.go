package model

import "time"

// Position is a paper holding opened from trade hints.
type Position struct {
	Ticker   string    `json:"ticker"`
	Shares   float64   `json:"shares"`
	AvgPrice float64   `json:"avg_price"`
	OpenedAt time.Time `json:"opened_at"`
}

// Fill is one executed paper order.
type Fill struct {
	Ticker      string      `json:"ticker"`
	Action      TradeAction `json:"action"`
	Shares      float64     `json:"shares"`
	Price       float64     `json:"price"`
	CashAfter   float64     `json:"cash_after"`
	RealizedPnL float64     `json:"realized_pnl"`
	At          time.Time   `json:"at"`
}

// PortfolioState is the persisted paper trading account.
type PortfolioState struct {
	StartingCash float64             `json:"starting_cash"`
	Cash         float64             `json:"cash"`
	Positions    map[string]Position `json:"positions"`
	Fills        []Fill              `json:"fills"`
	RealizedPnL  float64             `json:"realized_pnl"`
	UpdatedAt    time.Time           `json:"updated_at"`
}
