// Package collector implements the price feeds that supply daily bars.
package collector

import (
	"context"
	"sort"
	"time"

	"StockSignal/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error)
	Name() string
}

// dropBefore trims the bars older than cutoff. Bars are never reordered: a
// series whose timestamps are not strictly increasing is returned whole so
// that PriceSeries.Validate rejects it.
func dropBefore(bars []model.OHLCV, cutoff time.Time) []model.OHLCV {
	if model.CheckIndex(bars, func(b model.OHLCV) time.Time { return b.Time }) != nil {
		return bars
	}
	start := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(cutoff) })
	return bars[start:]
}
