package model

import "time"

// TradeAction is the direction hint derived from a price forecast.
type TradeAction string

const (
	ActionNone TradeAction = ""
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// ReportRow is the payload form of a scored bar.
type ReportRow struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	MAShort     float64 `json:"ma_short"`
	MALong      float64 `json:"ma_long"`
	RSI         float64 `json:"rsi"`
	BBUpper     float64 `json:"bb_upper"`
	BBLower     float64 `json:"bb_lower"`
	VolumeSpike int     `json:"volume_spike"`
	Support     float64 `json:"support"`
	Resistance  float64 `json:"resistance"`
	ATR         float64 `json:"atr"`
	Score       int     `json:"score"`
}

// TopSignal is one of the highest scoring bars.
type TopSignal struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
	Score int     `json:"score"`
}

// ReportTrade is the payload form of a TradeRecord.
type ReportTrade struct {
	BuyDate    string  `json:"buy_date"`
	BuyPrice   float64 `json:"buy_price"`
	SellDate   string  `json:"sell_date"`
	SellPrice  float64 `json:"sell_price"`
	ReturnPct  float64 `json:"return_pct"`
	ExitReason string  `json:"exit_reason"`
}

// NewsItem is a scored headline included in the report.
type NewsItem struct {
	Title     string  `json:"title"`
	Link      string  `json:"link,omitempty"`
	Sentiment float64 `json:"sentiment"`
}

// Report is the full analysis payload for one ticker.
type Report struct {
	RunID          string          `json:"run_id"`
	Ticker         string          `json:"ticker"`
	GeneratedAt    time.Time       `json:"generated_at"`
	MSE            float64         `json:"mse"`
	ModelName      string          `json:"model"`
	Data           []ReportRow     `json:"data"`
	TopSignals     []TopSignal     `json:"top_signals"`
	Backtest       []ReportTrade   `json:"backtest"`
	Summary        BacktestSummary `json:"summary"`
	Sentiment      float64         `json:"sentiment"`
	News           []NewsItem      `json:"news,omitempty"`
	PredictedPrice *float64        `json:"predicted_price"`
	TradeAction    TradeAction     `json:"trade_action,omitempty"`
	TradeStatus    string          `json:"trade_status,omitempty"`
	Latest         []RuleHit       `json:"latest_rules,omitempty"`

	// Rows holds every scored bar behind Data, for exports. Not serialized.
	Rows []ScoredRow `json:"-"`
}

// LastClose returns the close of the most recent row, or 0.
func (r *Report) LastClose() float64 {
	if len(r.Data) == 0 {
		return 0
	}
	return r.Data[len(r.Data)-1].Close
}
