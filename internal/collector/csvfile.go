package collector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"StockSignal/internal/model"
)

// csvDateLayouts lists the date formats accepted in the date column.
var csvDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// csvBar is one line of a daily bar export. Values stay strings so blank or
// malformed cells become NaN instead of failing the whole file.
type csvBar struct {
	Date   string `csv:"date"`
	Open   string `csv:"open"`
	High   string `csv:"high"`
	Low    string `csv:"low"`
	Close  string `csv:"close"`
	Volume string `csv:"volume"`
}

// CSVFetcher reads {Dir}/{SYMBOL}.csv files with a header row.
// Header names are matched case-insensitively.
type CSVFetcher struct {
	Dir string
}

func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) path(symbol string) string {
	return filepath.Join(f.Dir, strings.ToUpper(symbol)+".csv")
}

func (f *CSVFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.path(symbol))
	if err != nil {
		return nil, fmt.Errorf("csv open: %w", err)
	}

	header, body, _ := bytes.Cut(raw, []byte("\n"))
	fields := strings.Split(strings.TrimSpace(string(header)), ",")
	var cols model.ColumnSet
	for i, h := range fields {
		h = strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))
		fields[i] = h
		cols = cols.With(model.Column(h))
	}
	if !containsString(fields, "date") {
		return nil, fmt.Errorf("csv %s: no date column", f.path(symbol))
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(fields, ","))
	buf.WriteByte('\n')
	buf.Write(body)

	var rows []*csvBar
	if err := gocsv.Unmarshal(bufio.NewReader(&buf), &rows); err != nil {
		return nil, fmt.Errorf("csv decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, model.ErrEmptySeries
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for i, r := range rows {
		ts, err := parseCSVDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   model.ParseFloat(r.Open),
			High:   model.ParseFloat(r.High),
			Low:    model.ParseFloat(r.Low),
			Close:  model.ParseFloat(r.Close),
			Volume: model.ParseFloat(r.Volume),
		})
	}

	if days > 0 && len(bars) > 0 {
		bars = dropBefore(bars, bars[len(bars)-1].Time.AddDate(0, 0, -days))
	}

	return &model.PriceSeries{Symbol: symbol, Bars: bars, Columns: cols, FetchedAt: time.Now()}, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
