// Package scheduler runs the watchlist analysis on a cron schedule and
// answers chat commands.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockSignal/internal/model"
	"StockSignal/internal/notifier"
	"StockSignal/internal/recorder"
)

// Analyzer produces a report for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*model.Report, error)
}

// Broker executes paper orders for trade hints.
type Broker interface {
	Execute(ticker string, action model.TradeAction, price float64) (model.Fill, error)
	State() model.PortfolioState
}

// Sender delivers a message, retrying on failure.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const sendRetries = 3

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  Analyzer
	Notifier  Sender
	Recorder  recorder.Recorder
	Broker    Broker // optional
	Watchlist []string
	Ctx       context.Context
	Log       *logrus.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Analyzer, tn Sender, rec recorder.Recorder, watchlist []string, log *logrus.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analyzer:  a,
		Notifier:  tn,
		Recorder:  rec,
		Watchlist: watchlist,
		Ctx:       ctx,
		Log:       log,
	}
}

// Register adds the watchlist analysis task.
func (s *Scheduler) Register(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.WithField("watchlist", strings.Join(s.Watchlist, ",")).Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow executes the watchlist analysis immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.analysisTask()
}

func (s *Scheduler) analysisTask() {
	s.Log.WithField("tickers", len(s.Watchlist)).Info("running watchlist analysis")
	for _, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		report, err := s.analyze(s.Ctx, ticker)
		if err != nil {
			s.trySend(notifier.FormatError(ticker, err))
			continue
		}
		msg := notifier.FormatReport(report)
		if fill := s.paperTrade(report); fill != "" {
			msg += "\n" + fill
		}
		s.trySend(msg)
	}
}

// paperTrade follows the report's trade hint on the paper account and
// returns the line to append to the message.
func (s *Scheduler) paperTrade(report *model.Report) string {
	if s.Broker == nil || report.TradeAction == model.ActionNone {
		return ""
	}
	fill, err := s.Broker.Execute(report.Ticker, report.TradeAction, report.LastClose())
	if err != nil {
		s.Log.WithError(err).WithField("ticker", report.Ticker).Warn("paper order rejected")
		return "🧾 Paper order skipped: " + err.Error()
	}
	s.Log.WithFields(logrus.Fields{
		"ticker": fill.Ticker,
		"action": fill.Action,
		"shares": fill.Shares,
		"price":  fill.Price,
	}).Info("paper order filled")
	return notifier.FormatFill(fill)
}

// analyze runs one analysis and stores the result.
func (s *Scheduler) analyze(ctx context.Context, ticker string) (*model.Report, error) {
	report, err := s.Analyzer.Analyze(ctx, ticker)
	if err != nil {
		s.Log.WithError(err).WithField("ticker", ticker).Error("analysis failed")
		return nil, err
	}
	if err := s.Recorder.RecordAnalysis(ctx, report); err != nil {
		s.Log.WithError(err).WithField("ticker", ticker).Error("record analysis")
	}
	return report, nil
}

const helpText = "Available commands:\n" +
	"• /analyze TICKER - run an analysis now\n" +
	"• /history TICKER - recent stored analyses\n" +
	"• /watchlist - scheduled tickers\n" +
	"• /portfolio - paper trading account\n" +
	"• /run - analyse the whole watchlist now"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends @botname to commands in group chats.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch cmd {
	case "/analyze":
		if arg == "" {
			return "Usage: /analyze TICKER"
		}
		report, err := s.analyze(ctx, arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		return notifier.FormatReport(report)
	case "/history":
		if arg == "" {
			return "Usage: /history TICKER"
		}
		recs, err := s.Recorder.RecentAnalyses(ctx, arg, 10)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		return notifier.FormatHistory(arg, recs)
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty"
		}
		return "Watchlist: " + strings.Join(s.Watchlist, ", ")
	case "/portfolio":
		if s.Broker == nil {
			return "Paper trading is disabled"
		}
		return notifier.FormatPortfolio(s.Broker.State())
	case "/run":
		go s.analysisTask()
		return "Watchlist analysis started"
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.Log.WithError(err).Error("send notification")
	}
}
