package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := New(tt.in, &bytes.Buffer{}).GetLevel(); got != tt.want {
			t.Errorf("New(%q) level = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesText(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", &buf)
	l.WithField("ticker", "AAPL").Info("analysis done")
	out := buf.String()
	if !strings.Contains(out, "analysis done") || !strings.Contains(out, "ticker=AAPL") {
		t.Errorf("unexpected log line: %q", out)
	}
}
