// Package analyzer runs the full per-ticker pipeline: fetch, indicators,
// scores, features, prediction, backtest and sentiment, and assembles the
// report payload.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"StockSignal/internal/backtest"
	"StockSignal/internal/calculator"
	"StockSignal/internal/collector"
	"StockSignal/internal/metrics"
	"StockSignal/internal/model"
	"StockSignal/internal/predictor"
	"StockSignal/internal/sentiment"
	"StockSignal/internal/strategy"
)

var (
	// ErrNoTicker is returned when Analyze is called without a symbol.
	ErrNoTicker = errors.New("ticker is required")
	// ErrFetch wraps every price feed failure.
	ErrFetch = errors.New("price fetch failed")
)

// Config controls the orchestration and the shape of the report.
type Config struct {
	HistoryDays      int           `yaml:"history_days"`
	Timeout          time.Duration `yaml:"timeout"`
	DisplayRows      int           `yaml:"display_rows"`
	TopSignals       int           `yaml:"top_signals"`
	LastTrades       int           `yaml:"last_trades"`
	VolatilityWindow int           `yaml:"volatility_window"`
	MinFeatureRows   int           `yaml:"min_feature_rows"`
	MockTrading      bool          `yaml:"mock_trading"`
}

// DefaultConfig downloads two years of bars and reports the last year.
func DefaultConfig() Config {
	return Config{
		HistoryDays:      730,
		Timeout:          60 * time.Second,
		DisplayRows:      365,
		TopSignals:       5,
		LastTrades:       5,
		VolatilityWindow: 20,
		MinFeatureRows:   10,
		MockTrading:      true,
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.HistoryDays <= 0:
		return errors.New("history_days must be positive")
	case c.Timeout <= 0:
		return errors.New("timeout must be positive")
	case c.DisplayRows <= 0:
		return errors.New("display_rows must be positive")
	case c.TopSignals < 0 || c.LastTrades < 0:
		return errors.New("top_signals and last_trades must not be negative")
	case c.VolatilityWindow < 2:
		return errors.New("volatility_window must be at least 2")
	case c.MinFeatureRows < 1:
		return errors.New("min_feature_rows must be positive")
	}
	return nil
}

// Settings bundles the configuration of every pipeline stage.
type Settings struct {
	Indicators calculator.Config
	Rules      strategy.Rules
	Backtest   backtest.Config
	Predictor  predictor.Config
	Analysis   Config
}

// DefaultSettings returns the defaults of every stage.
func DefaultSettings() Settings {
	return Settings{
		Indicators: calculator.DefaultConfig(),
		Rules:      strategy.DefaultRules(),
		Backtest:   backtest.DefaultConfig(),
		Predictor:  predictor.DefaultConfig(),
		Analysis:   DefaultConfig(),
	}
}

// Analyzer is safe for concurrent use; every call works on its own series.
type Analyzer struct {
	fetcher   collector.Fetcher
	sentiment sentiment.Source
	settings  Settings
	log       *logrus.Logger
	metrics   *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// New creates an analyzer. src and m may be nil.
func New(fetcher collector.Fetcher, src sentiment.Source, settings Settings, log *logrus.Logger, m *metrics.Metrics) *Analyzer {
	if src == nil {
		src = sentiment.NoopSource{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{
		fetcher:   fetcher,
		sentiment: src,
		settings:  settings,
		log:       log,
		metrics:   m,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Settings returns the stage configuration the analyzer runs with.
func (a *Analyzer) Settings() Settings { return a.settings }

// Analyze fetches the history of ticker and runs the whole pipeline on it.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (*model.Report, error) {
	start := time.Now()
	report, err := a.analyze(ctx, ticker)
	a.metrics.ObserveAnalysis(start, err)
	if err != nil {
		entry := a.log.WithError(err).WithField("ticker", ticker)
		if errors.Is(err, context.Canceled) {
			entry.Info("analysis cancelled")
		} else {
			entry.Warn("analysis failed")
		}
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"ticker":   report.Ticker,
		"run_id":   report.RunID,
		"rows":     len(report.Data),
		"model":    report.ModelName,
		"action":   report.TradeAction,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("analysis complete")
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, ticker string) (*model.Report, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrNoTicker
	}

	ctx, cancel := context.WithTimeout(ctx, a.settings.Analysis.Timeout)
	defer cancel()

	series, err := a.fetcher.FetchDailyBars(ctx, ticker, a.settings.Analysis.HistoryDays)
	if err != nil {
		a.metrics.ObserveFetchError(a.fetcher.Name())
		return nil, fmt.Errorf("%w for %s from %s: %w", ErrFetch, ticker, a.fetcher.Name(), err)
	}
	if a.metrics != nil {
		a.metrics.BarsFetched.Add(float64(series.Len()))
	}
	a.log.WithFields(logrus.Fields{"ticker": ticker, "bars": series.Len(), "source": a.fetcher.Name()}).Debug("history fetched")

	return a.AnalyzeSeries(ctx, ticker, series)
}

// AnalyzeSeries runs the pipeline on an already loaded series. The series is
// cloned, so the caller's bars are never modified.
func (a *Analyzer) AnalyzeSeries(ctx context.Context, ticker string, series *model.PriceSeries) (*model.Report, error) {
	if series == nil {
		return nil, model.ErrEmptySeries
	}
	s := a.settings
	scored, err := ScoreSeries(series.Clone(), s, a.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headlines := a.headlines(ctx, ticker)
	sent, hasSent := sentiment.Average(headlines)
	var sentPtr *float64
	if hasSent {
		sentPtr = &sent
	}

	feats, closes := EngineerFeatures(scored, sentPtr, s.Analysis.VolatilityWindow)
	if len(feats) < s.Analysis.MinFeatureRows {
		return nil, fmt.Errorf("features: %w", &model.InsufficientHistoryError{
			Component: "features",
			Have:      len(feats),
			Need:      s.Analysis.MinFeatureRows,
		})
	}

	fit, err := predictor.Train(feats, closes, s.Predictor)
	if err != nil {
		return nil, fmt.Errorf("predictor: %w", err)
	}
	forecast := fit.Model.Predict(feats[len(feats)-1].Values())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trades := backtest.Run(scored, s.Backtest)
	summary := backtest.Summarize(trades)
	a.log.WithField("ticker", ticker).Debug("backtest: " + backtest.String(summary))

	latest := &scored[len(scored)-1]
	action := strategy.Action(forecast, latest)

	report := buildReport(reportInput{
		ticker:    ticker,
		runID:     a.newID(),
		generated: a.now(),
		scored:    scored,
		trades:    trades,
		summary:   summary,
		fit:       fit,
		forecast:  forecast,
		sentiment: sent,
		headlines: headlines,
		action:    action,
		rules:     strategy.Explain(&latest.IndicatorRow, s.Rules),
		cfg:       s.Analysis,
	})

	a.observeReport(report, trades)
	return report, nil
}

// ScoreSeries validates series and returns its scored indicator rows.
func ScoreSeries(series *model.PriceSeries, s Settings, log *logrus.Logger) ([]model.ScoredRow, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	rows, err := calculator.Compute(series, s.Indicators)
	if err != nil {
		return nil, fmt.Errorf("indicators: %w", err)
	}
	return strategy.ScoreAll(rows, s.Rules, log), nil
}

// headlines returns nil on any source failure, which means no sentiment.
func (a *Analyzer) headlines(ctx context.Context, ticker string) []sentiment.Headline {
	hs, err := a.sentiment.Headlines(ctx, ticker)
	if err != nil {
		a.log.WithError(err).WithField("source", a.sentiment.Name()).Warn("sentiment unavailable")
		return nil
	}
	return hs
}

func (a *Analyzer) observeReport(r *model.Report, trades []model.TradeRecord) {
	if a.metrics == nil {
		return
	}
	for _, t := range trades {
		a.metrics.TradesSimulated.WithLabelValues(string(t.ExitReason)).Inc()
	}
	if n := len(r.Data); n > 0 {
		a.metrics.SignalScore.WithLabelValues(r.Ticker).Set(float64(r.Data[n-1].Score))
	}
	a.metrics.ModelMSE.WithLabelValues(r.Ticker).Set(r.MSE)
}
