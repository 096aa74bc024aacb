package model

// IndicatorRow is one bar plus every derived indicator.
// Numeric fields are NaN when undefined.
type IndicatorRow struct {
	OHLCV
	MAShort     float64
	MALong      float64
	RSI         float64
	BBUpper     float64
	BBLower     float64
	VolumeSpike bool
	Support     float64
	Resistance  float64
	ATR         float64
}

// ScoredRow is an IndicatorRow with its signal score.
type ScoredRow struct {
	IndicatorRow
	Score int
}

// RuleHit represents a single scoring rule's contribution.
type RuleHit struct {
	Name       string
	Points     int
	Commentary string
}

// FeatureVector is what the predictor consumes for one row.
type FeatureVector struct {
	MAShort   float64
	MALong    float64
	RSI       float64
	BBUpper   float64
	BBLower   float64
	ATR       float64
	Score     float64
	Sentiment *float64
}

// Values flattens the vector in its canonical order; sentiment is appended when set.
func (f FeatureVector) Values() []float64 {
	v := []float64{f.MAShort, f.MALong, f.RSI, f.BBUpper, f.BBLower, f.ATR, f.Score}
	if f.Sentiment != nil {
		v = append(v, *f.Sentiment)
	}
	return v
}

// FeatureNames matches the order of Values.
func FeatureNames(withSentiment bool) []string {
	names := []string{"ma_short", "ma_long", "rsi", "bb_upper", "bb_lower", "atr", "score"}
	if withSentiment {
		names = append(names, "sentiment")
	}
	return names
}
