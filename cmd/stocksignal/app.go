package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"StockSignal/internal/analyzer"
	"StockSignal/internal/collector"
	"StockSignal/internal/config"
	"StockSignal/internal/logger"
	"StockSignal/internal/metrics"
	"StockSignal/internal/recorder"
	"StockSignal/internal/sentiment"
)

// app holds the components every command shares.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	metrics  *metrics.Metrics
	analyzer *analyzer.Analyzer
}

// loadApp reads the config, applies command-line overrides and wires the pipeline.
func loadApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if provider != "" {
		cfg.DataSource.Provider = provider
	}
	if csvDir != "" {
		cfg.DataSource.CSVDir = csvDir
		if provider == "" {
			cfg.DataSource.Provider = config.ProviderCSV
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log := logger.Setup(cfg.Log.Level)
	m := metrics.NewMetrics()
	fetcher := newFetcher(cfg)
	news := newSentimentSource(cfg)
	log.WithFields(logrus.Fields{"source": fetcher.Name(), "sentiment": news.Name()}).Info("data source selected")

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		analyzer: analyzer.New(fetcher, news, cfg.Settings(), log, m),
	}, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderREST:
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.RequestsPerSecond)
	case config.ProviderCSV:
		return collector.NewCSVFetcher(ds.CSVDir)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, ds.RequestsPerSecond)
	}
}

func newSentimentSource(cfg *config.Config) sentiment.Source {
	if cfg.Sentiment.Provider == config.SentimentRSS {
		return sentiment.NewRSSSource(cfg.Sentiment.FeedURL, cfg.Proxy, cfg.Sentiment.Limit)
	}
	return sentiment.NoopSource{}
}

// openRecorder falls back to the noop recorder when SQLite is unavailable.
func (a *app) openRecorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, a.log)
	if err != nil {
		a.log.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
