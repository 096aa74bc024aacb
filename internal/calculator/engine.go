// Package calculator computes the technical indicator columns of a price series.
package calculator

import (
	"errors"
	"fmt"

	"StockSignal/internal/model"
)

const component = "indicators"

// Config holds the windows and multipliers of every indicator.
type Config struct {
	ShortWindow           int     `yaml:"short_window"`
	LongWindow            int     `yaml:"long_window"`
	RSIPeriod             int     `yaml:"rsi_period"`
	BollingerWindow       int     `yaml:"bollinger_window"`
	BollingerK            float64 `yaml:"bollinger_k"`
	VolumeWindow          int     `yaml:"volume_window"`
	VolumeSpikeMultiplier float64 `yaml:"volume_spike_multiplier"`
	RangeWindow           int     `yaml:"range_window"`
	ATRPeriod             int     `yaml:"atr_period"`
}

// DefaultConfig returns the standard daily-bar settings.
func DefaultConfig() Config {
	return Config{
		ShortWindow:           20,
		LongWindow:            50,
		RSIPeriod:             14,
		BollingerWindow:       20,
		BollingerK:            2,
		VolumeWindow:          20,
		VolumeSpikeMultiplier: 1.5,
		RangeWindow:           20,
		ATRPeriod:             14,
	}
}

// Validate checks that every window is positive.
func (c Config) Validate() error {
	windows := []struct {
		name string
		w    int
	}{
		{"short_window", c.ShortWindow},
		{"long_window", c.LongWindow},
		{"rsi_period", c.RSIPeriod},
		{"bollinger_window", c.BollingerWindow},
		{"volume_window", c.VolumeWindow},
		{"range_window", c.RangeWindow},
		{"atr_period", c.ATRPeriod},
	}
	for _, w := range windows {
		if w.w <= 0 {
			return fmt.Errorf("indicators.%s must be positive", w.name)
		}
	}
	if c.BollingerK < 0 {
		return errors.New("indicators.bollinger_k must not be negative")
	}
	if c.VolumeSpikeMultiplier <= 0 {
		return errors.New("indicators.volume_spike_multiplier must be positive")
	}
	return nil
}

// Compute derives one IndicatorRow per bar of series.
//
// close and volume are required columns, high and low are required for ATR.
// A required price column without any finite value is rejected; per-bar
// NaNs are resolved by each indicator's fallback.
func Compute(series *model.PriceSeries, cfg Config) ([]model.IndicatorRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, col := range []model.Column{model.ColumnClose, model.ColumnVolume, model.ColumnHigh, model.ColumnLow} {
		if !series.Columns.Has(col) {
			return nil, &model.MissingColumnError{Component: component, Column: col}
		}
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	for _, c := range []struct {
		col    model.Column
		values []float64
	}{
		{model.ColumnClose, closes},
		{model.ColumnHigh, highs},
		{model.ColumnLow, lows},
	} {
		if !hasFinite(c.values) {
			return nil, &model.InvalidDataError{Component: component, Column: c.col}
		}
	}

	maShort, err := CalculateMA(closes, cfg.ShortWindow)
	if err != nil {
		return nil, fmt.Errorf("ma short: %w", err)
	}
	maLong, err := CalculateMA(closes, cfg.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("ma long: %w", err)
	}
	rsi, err := CalculateRSI(closes, cfg.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	upper, lower, err := CalculateBollinger(closes, cfg.BollingerWindow, cfg.BollingerK)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	spikes, err := CalculateVolumeSpike(volumes, cfg.VolumeWindow, cfg.VolumeSpikeMultiplier)
	if err != nil {
		return nil, fmt.Errorf("volume spike: %w", err)
	}
	support, resistance, err := CalculateSupportResistance(closes, cfg.RangeWindow)
	if err != nil {
		return nil, fmt.Errorf("support/resistance: %w", err)
	}
	atr, err := CalculateATR(highs, lows, closes, cfg.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}

	rows := make([]model.IndicatorRow, len(series.Bars))
	for i, bar := range series.Bars {
		rows[i] = model.IndicatorRow{
			OHLCV:       bar,
			MAShort:     maShort[i],
			MALong:      maLong[i],
			RSI:         rsi[i],
			BBUpper:     upper[i],
			BBLower:     lower[i],
			VolumeSpike: spikes[i],
			Support:     support[i],
			Resistance:  resistance[i],
			ATR:         atr[i],
		}
	}
	return rows, nil
}
