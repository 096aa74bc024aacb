package strategy

import "StockSignal/internal/model"

// Features builds the predictor input for one scored row.
// sentiment may be nil; it never influences the score itself.
func Features(row *model.ScoredRow, sentiment *float64) model.FeatureVector {
	return model.FeatureVector{
		MAShort:   row.MAShort,
		MALong:    row.MALong,
		RSI:       row.RSI,
		BBUpper:   row.BBUpper,
		BBLower:   row.BBLower,
		ATR:       row.ATR,
		Score:     float64(row.Score),
		Sentiment: sentiment,
	}
}

// ForecastBand is the relative move a forecast must exceed to produce a hint.
const ForecastBand = 0.05

// Action derives a trade direction from a price forecast and the latest row.
// A buy also requires the close to sit under the upper band, a sell above the
// lower band; a band that is NaN never blocks.
func Action(forecast float64, latest *model.ScoredRow) model.TradeAction {
	if latest == nil || !model.IsFinite(forecast) || !model.IsFinite(latest.Close) {
		return model.ActionNone
	}
	c := latest.Close
	switch {
	case forecast > c*(1+ForecastBand) && !(c >= latest.BBUpper):
		return model.ActionBuy
	case forecast < c*(1-ForecastBand) && !(c <= latest.BBLower):
		return model.ActionSell
	default:
		return model.ActionNone
	}
}
