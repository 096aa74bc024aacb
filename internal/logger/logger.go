// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a text logger at the given level ("debug", "info", ...).
// An unknown level falls back to info.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Setup applies the same settings to the standard logrus logger, which the
// pure pipeline packages log through, and returns a dedicated instance.
func Setup(level string) *logrus.Logger {
	l := New(level, os.Stderr)
	logrus.SetOutput(l.Out)
	logrus.SetFormatter(l.Formatter)
	logrus.SetLevel(l.GetLevel())
	return l
}
