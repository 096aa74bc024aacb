package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DataSource.Provider != ProviderYahoo {
		t.Errorf("provider = %q, want yahoo", cfg.DataSource.Provider)
	}
	if cfg.Indicators.ShortWindow != 20 || cfg.Indicators.LongWindow != 50 {
		t.Errorf("indicator defaults not applied: %+v", cfg.Indicators)
	}
	if cfg.Backtest.MinScore != 4.5 || cfg.Analysis.DisplayRows != 365 {
		t.Errorf("pipeline defaults not applied: %+v %+v", cfg.Backtest, cfg.Analysis)
	}
	if cfg.Paper.Enabled || cfg.Paper.OrderSize != 10 || cfg.Paper.StartingCash != 10000 {
		t.Errorf("paper defaults = %+v", cfg.Paper)
	}
	if cfg.Sentiment.Provider != SentimentNone || cfg.Sentiment.Limit != 5 {
		t.Errorf("sentiment defaults = %+v", cfg.Sentiment)
	}
	if cfg.Server.ListenAddr != ":8000" {
		t.Errorf("listen addr = %q", cfg.Server.ListenAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := cfg.ValidateTelegram(); err == nil {
		t.Error("telegram validation should fail without a token")
	}
}

func TestLoadPartialSectionKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
indicators:
  short_window: 10
backtest:
  holding_days: 5
analysis:
  timeout: 15s
data_source:
  provider: CSV
  csv_dir: /tmp/bars
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Indicators.ShortWindow != 10 || cfg.Indicators.LongWindow != 50 {
		t.Errorf("indicators = %+v", cfg.Indicators)
	}
	if cfg.Backtest.HoldingDays != 5 || cfg.Backtest.TakeProfitPct != 10 {
		t.Errorf("backtest = %+v", cfg.Backtest)
	}
	if cfg.Analysis.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", cfg.Analysis.Timeout)
	}
	if cfg.DataSource.Provider != ProviderCSV {
		t.Errorf("provider = %q", cfg.DataSource.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("DATA_BASE_URL", "http://bars.local")
	t.Setenv("WATCHLIST", "aapl, msft,,spy")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "data_source:\n  watchlist: [QQQ]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataSource.Provider != ProviderREST {
		t.Errorf("provider = %q, want rest when a base url is set", cfg.DataSource.Provider)
	}
	want := []string{"AAPL", "MSFT", "SPY"}
	if len(cfg.DataSource.Watchlist) != len(want) {
		t.Fatalf("watchlist = %v", cfg.DataSource.Watchlist)
	}
	for i := range want {
		if cfg.DataSource.Watchlist[i] != want[i] {
			t.Errorf("watchlist = %v, want %v", cfg.DataSource.Watchlist, want)
		}
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if err := cfg.ValidateTelegram(); err != nil {
		t.Errorf("ValidateTelegram: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "ftp" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = ProviderREST }},
		{"csv without dir", func(c *Config) { c.DataSource.Provider = ProviderCSV }},
		{"bad window", func(c *Config) { c.Indicators.ShortWindow = 0 }},
		{"bad holding", func(c *Config) { c.Backtest.HoldingDays = 0 }},
		{"bad split", func(c *Config) { c.Predictor.TestFraction = 1 }},
		{"bad rows", func(c *Config) { c.Analysis.DisplayRows = 0 }},
		{"bad order size", func(c *Config) { c.Paper.Enabled = true; c.Paper.OrderSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "indicators: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSentimentSection(t *testing.T) {
	path := writeConfig(t, `
sentiment:
  provider: RSS
  limit: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Sentiment.Provider != SentimentRSS || cfg.Sentiment.Limit != 3 {
		t.Errorf("sentiment = %+v", cfg.Sentiment)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("rss sentiment should validate: %v", err)
	}
	cfg.Sentiment.Provider = "twitter"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unsupported sentiment provider to fail validation")
	}
}
