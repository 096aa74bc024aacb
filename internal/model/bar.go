package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
// A field the feed could not convert to a number holds NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Column names a price series column.
type Column string

const (
	ColumnOpen   Column = "open"
	ColumnHigh   Column = "high"
	ColumnLow    Column = "low"
	ColumnClose  Column = "close"
	ColumnVolume Column = "volume"
	ColumnScore  Column = "score"
)

// ColumnSet records which columns a feed actually supplied.
type ColumnSet uint8

const (
	HasOpen ColumnSet = 1 << iota
	HasHigh
	HasLow
	HasClose
	HasVolume

	AllColumns = HasOpen | HasHigh | HasLow | HasClose | HasVolume
)

var columnBits = map[Column]ColumnSet{
	ColumnOpen:   HasOpen,
	ColumnHigh:   HasHigh,
	ColumnLow:    HasLow,
	ColumnClose:  HasClose,
	ColumnVolume: HasVolume,
}

// Has reports whether the column is present.
func (s ColumnSet) Has(c Column) bool {
	bit, ok := columnBits[c]
	return ok && s&bit != 0
}

// With returns the set with c added.
func (s ColumnSet) With(c Column) ColumnSet {
	return s | columnBits[c]
}

// PriceSeries holds raw price data for analysis.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	Columns   ColumnSet
	FetchedAt time.Time
}

// NewPriceSeries builds a series with every OHLCV column marked present.
func NewPriceSeries(symbol string, bars []OHLCV) *PriceSeries {
	return &PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		Columns:   AllColumns,
		FetchedAt: time.Now(),
	}
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Validate rejects an empty series and a time index that is not strictly increasing.
func (s *PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return ErrEmptySeries
	}
	return CheckIndex(s.Bars, func(b OHLCV) time.Time { return b.Time })
}

// Clone returns a deep copy so concurrent analyses never share bars.
func (s *PriceSeries) Clone() *PriceSeries {
	bars := make([]OHLCV, len(s.Bars))
	copy(bars, s.Bars)
	return &PriceSeries{Symbol: s.Symbol, Bars: bars, Columns: s.Columns, FetchedAt: s.FetchedAt}
}

// Closes extracts the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func (s *PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume column.
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// CheckIndex verifies that the timestamps of items are strictly increasing.
func CheckIndex[T any](items []T, ts func(T) time.Time) error {
	for i := 1; i < len(items); i++ {
		prev, cur := ts(items[i-1]), ts(items[i])
		switch {
		case cur.Equal(prev):
			return &IndexError{Position: i, Reason: "duplicate timestamp " + cur.Format(time.RFC3339)}
		case cur.Before(prev):
			return &IndexError{Position: i, Reason: "timestamp " + cur.Format(time.RFC3339) + " precedes " + prev.Format(time.RFC3339)}
		}
	}
	return nil
}

// ToFloat coerces a loosely typed feed value to a float64.
// Anything that cannot be converted becomes NaN.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return ParseFloat(n)
	default:
		return math.NaN()
	}
}

// ParseFloat parses s, returning NaN for empty or malformed input.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
