package sentiment

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const yahooRSSURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// RSSSource scores the newest headlines of a per-ticker RSS feed.
type RSSSource struct {
	// FeedURL is a format string with one %s for the ticker.
	FeedURL string
	Limit   int
	Client  *http.Client
	Limiter *rate.Limiter
	Scorer  func(title string) float64
}

// NewRSSSource returns a source reading feedURL, or the Yahoo Finance
// headline feed when feedURL is empty.
func NewRSSSource(feedURL, proxyURL string, limit int) *RSSSource {
	if feedURL == "" {
		feedURL = yahooRSSURL
	}
	if limit <= 0 {
		limit = 5
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RSSSource{
		FeedURL: feedURL,
		Limit:   limit,
		Client:  &http.Client{Timeout: 15 * time.Second, Transport: transport},
		Limiter: rate.NewLimiter(rate.Limit(1), 1),
		Scorer:  Score,
	}
}

func (s *RSSSource) Name() string { return "rss" }

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Headlines fetches the feed and scores up to Limit items.
func (s *RSSSource) Headlines(ctx context.Context, ticker string) ([]Headline, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	feedURL := fmt.Sprintf(s.FeedURL, url.QueryEscape(strings.ToUpper(ticker)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed HTTP %d: %s", resp.StatusCode, string(body))
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	score := s.Scorer
	if score == nil {
		score = Score
	}
	var out []Headline
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		h := Headline{Title: title, Link: strings.TrimSpace(item.Link), Sentiment: score(title)}
		if t, err := time.Parse(time.RFC1123Z, strings.TrimSpace(item.PubDate)); err == nil {
			h.Published = t
		} else if t, err := time.Parse(time.RFC1123, strings.TrimSpace(item.PubDate)); err == nil {
			h.Published = t
		}
		out = append(out, h)
		if len(out) == s.Limit {
			break
		}
	}
	return out, nil
}
