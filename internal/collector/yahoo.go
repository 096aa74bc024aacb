package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"StockSignal/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	Limiter   *rate.Limiter
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher allowing
// requestsPerSecond chart calls.
func NewYahooFetcher(proxyURL string, requestsPerSecond float64) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(col []interface{}, i int) float64 {
	if i >= len(col) {
		return math.NaN()
	}
	return model.ToFloat(col[i])
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (*model.PriceSeries, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("yahoo rate limit: %w", err)
		}
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, model.ErrEmptySeries
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var cols model.ColumnSet
	for _, c := range []struct {
		col    model.Column
		values []interface{}
	}{
		{model.ColumnOpen, quote.Open},
		{model.ColumnHigh, quote.High},
		{model.ColumnLow, quote.Low},
		{model.ColumnClose, quote.Close},
		{model.ColumnVolume, quote.Volume},
	} {
		if len(c.values) > 0 {
			cols = cols.With(c.col)
		}
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   valueAt(quote.Open, i),
			High:   valueAt(quote.High, i),
			Low:    valueAt(quote.Low, i),
			Close:  valueAt(quote.Close, i),
			Volume: valueAt(quote.Volume, i),
		}
		if math.IsNaN(bar.Open) && math.IsNaN(bar.High) && math.IsNaN(bar.Low) && math.IsNaN(bar.Close) {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, bar)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		Columns:   cols,
		FetchedAt: time.Now(),
	}, nil
}

// yahooRange picks the smallest chart range covering days calendar days.
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// FetchDailyBars downloads daily bars covering the last days calendar days.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	series, err := f.fetchChart(ctx, symbol, "1d", yahooRange(days))
	if err != nil {
		return nil, err
	}
	series.Bars = dropBefore(series.Bars, time.Now().UTC().AddDate(0, 0, -days))
	return series, nil
}
