package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"StockSignal/internal/analyzer"
	"StockSignal/internal/backtest"
	"StockSignal/internal/calculator"
	"StockSignal/internal/predictor"
	"StockSignal/internal/strategy"
)

// Price feed providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderCSV   = "csv"
	ProviderMock  = "mock"
)

// News sentiment providers.
const (
	SentimentNone = "none"
	SentimentRSS  = "rss"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider          string   `yaml:"provider"`
		BaseURL           string   `yaml:"base_url"`
		APIKey            string   `yaml:"api_key"`
		CSVDir            string   `yaml:"csv_dir"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
		Watchlist         []string `yaml:"watchlist"`
	} `yaml:"data_source"`
	Sentiment struct {
		Provider string `yaml:"provider"`
		FeedURL  string `yaml:"feed_url"`
		Limit    int    `yaml:"limit"`
	} `yaml:"sentiment"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Paper struct {
		Enabled      bool    `yaml:"enabled"`
		StateFile    string  `yaml:"state_file"`
		StartingCash float64 `yaml:"starting_cash"`
		OrderSize    float64 `yaml:"order_size"`
	} `yaml:"paper"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		Mode       string `yaml:"mode"`
	} `yaml:"server"`
	Indicators calculator.Config `yaml:"indicators"`
	Scoring    strategy.Rules    `yaml:"scoring"`
	Backtest   backtest.Config   `yaml:"backtest"`
	Predictor  predictor.Config  `yaml:"predictor"`
	Analysis   analyzer.Config   `yaml:"analysis"`
	Log        struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; every pipeline section starts from its defaults
// and only the keys present in the file replace them.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	s := analyzer.DefaultSettings()
	cfg.Indicators = s.Indicators
	cfg.Scoring = s.Rules
	cfg.Backtest = s.Backtest
	cfg.Predictor = s.Predictor
	cfg.Analysis = s.Analysis

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_CSV_DIR"); v != "" {
		cfg.DataSource.CSVDir = v
	}
	if v := os.Getenv("SENTIMENT_PROVIDER"); v != "" {
		cfg.Sentiment.Provider = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.DataSource.Watchlist = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		cfg.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("PAPER_TRADING"); v != "" {
		cfg.Paper.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		switch {
		case cfg.DataSource.BaseURL != "":
			cfg.DataSource.Provider = ProviderREST
		case cfg.DataSource.CSVDir != "":
			cfg.DataSource.Provider = ProviderCSV
		default:
			cfg.DataSource.Provider = ProviderYahoo
		}
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 2
	}
	if cfg.Sentiment.Provider == "" {
		cfg.Sentiment.Provider = SentimentNone
	}
	cfg.Sentiment.Provider = strings.ToLower(cfg.Sentiment.Provider)
	if cfg.Sentiment.Limit == 0 {
		cfg.Sentiment.Limit = 5
	}
	if len(cfg.DataSource.Watchlist) == 0 {
		cfg.DataSource.Watchlist = []string{"AAPL"}
	}
	if cfg.Schedule.AnalysisCron == "" {
		cfg.Schedule.AnalysisCron = "0 30 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocksignal.db"
	}
	if cfg.Paper.StateFile == "" {
		cfg.Paper.StateFile = "data/paper_portfolio.json"
	}
	if cfg.Paper.StartingCash == 0 {
		cfg.Paper.StartingCash = 10000
	}
	if cfg.Paper.OrderSize == 0 {
		cfg.Paper.OrderSize = 10
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8000"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Settings returns the pipeline configuration.
func (c *Config) Settings() analyzer.Settings {
	return analyzer.Settings{
		Indicators: c.Indicators,
		Rules:      c.Scoring,
		Backtest:   c.Backtest,
		Predictor:  c.Predictor,
		Analysis:   c.Analysis,
	}
}

// Validate checks the data source and every pipeline section.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	case ProviderCSV:
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Sentiment.Provider != SentimentNone && c.Sentiment.Provider != SentimentRSS {
		return fmt.Errorf("sentiment.provider %q is not supported", c.Sentiment.Provider)
	}
	if c.Sentiment.Limit < 0 {
		return fmt.Errorf("sentiment.limit must not be negative")
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	if c.Paper.Enabled && (c.Paper.StartingCash < 0 || c.Paper.OrderSize <= 0) {
		return fmt.Errorf("paper.starting_cash must not be negative and paper.order_size must be positive")
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Predictor.Horizon <= 0 || c.Predictor.MinRows < 0 {
		return fmt.Errorf("predictor.forecast_horizon must be positive")
	}
	if c.Predictor.TestFraction <= 0 || c.Predictor.TestFraction >= 1 {
		return fmt.Errorf("predictor.test_fraction must be in (0, 1)")
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

// ValidateTelegram checks the settings the bot needs on top of Validate.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
