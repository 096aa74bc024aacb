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

// RESTFetcher reads daily bars from a generic JSON bar endpoint:
// GET {BaseURL}/api/v1/bars/daily?symbol=X&limit=N returning an array of
// objects with timestamp, open, high, low, close and volume keys.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, requestsPerSecond float64) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

var restColumns = []model.Column{
	model.ColumnOpen, model.ColumnHigh, model.ColumnLow, model.ColumnClose, model.ColumnVolume,
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), days)
	raw, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("rest decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrEmptySeries
	}

	var cols model.ColumnSet
	for _, c := range restColumns {
		for _, r := range rows {
			if _, ok := r[string(c)]; ok {
				cols = cols.With(c)
				break
			}
		}
	}

	field := func(r map[string]any, c model.Column) float64 {
		v, ok := r[string(c)]
		if !ok {
			return math.NaN()
		}
		return model.ToFloat(v)
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for i, r := range rows {
		ts := model.ToFloat(r["timestamp"])
		if math.IsNaN(ts) {
			return nil, fmt.Errorf("rest: row %d has no usable timestamp", i)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(int64(ts), 0).UTC(),
			Open:   field(r, model.ColumnOpen),
			High:   field(r, model.ColumnHigh),
			Low:    field(r, model.ColumnLow),
			Close:  field(r, model.ColumnClose),
			Volume: field(r, model.ColumnVolume),
		})
	}

	return &model.PriceSeries{Symbol: symbol, Bars: bars, Columns: cols, FetchedAt: time.Now()}, nil
}

func (f *RESTFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rest rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rest read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rest: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
