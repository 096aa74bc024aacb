// Package sentiment supplies an optional per-ticker news sentiment scalar.
package sentiment

import (
	"context"
	"strings"
	"time"
)

// Headline is one news item with its sentiment in [-1, 1].
type Headline struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Sentiment float64   `json:"sentiment"`
}

// Source returns the latest headlines for a ticker.
type Source interface {
	Headlines(ctx context.Context, ticker string) ([]Headline, error)
	Name() string
}

// Average returns the mean headline sentiment and whether there was any.
func Average(headlines []Headline) (float64, bool) {
	if len(headlines) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, h := range headlines {
		sum += h.Sentiment
	}
	return sum / float64(len(headlines)), true
}

// NoopSource never has news.
type NoopSource struct{}

func (NoopSource) Name() string { return "none" }

func (NoopSource) Headlines(context.Context, string) ([]Headline, error) { return nil, nil }

// StaticSource serves fixed headlines per ticker, for development and testing.
type StaticSource struct {
	ByTicker map[string][]Headline
	Limit    int
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Headlines(_ context.Context, ticker string) ([]Headline, error) {
	hs := s.ByTicker[strings.ToUpper(ticker)]
	if s.Limit > 0 && len(hs) > s.Limit {
		hs = hs[:s.Limit]
	}
	return hs, nil
}
