package collector

import (
	"context"
	"sync"
	"time"

	"StockSignal/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Series  *model.PriceSeries
	Err     error
	Calls   int
	Columns model.ColumnSet

	mu sync.Mutex
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) (*model.PriceSeries, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series != nil {
		return m.Series.Clone(), nil
	}
	s := model.NewPriceSeries(symbol, GenerateMockBars(m.Price, days))
	if m.Columns != 0 {
		s.Columns = m.Columns
	}
	return s, nil
}

// GenerateMockBars produces a gently oscillating daily series ending today.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.03*float64((i%17)-8)/8)
		bars[i] = model.OHLCV{
			Time:   today.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 * (1 + float64(i%11)/10),
		}
	}
	return bars
}
