package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"StockSignal/internal/model"
)

// SQLiteRecorder persists analyses and their backtest trades to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logrus.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL UNIQUE,
			timestamp       INTEGER NOT NULL,
			ticker          TEXT NOT NULL,
			last_close      REAL,
			score           INTEGER,
			predicted_price REAL,
			mse             REAL,
			model           TEXT,
			trade_action    TEXT,
			sentiment       REAL,
			total_trades    INTEGER,
			win_rate        REAL,
			avg_return_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker_ts ON analyses(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			ticker      TEXT NOT NULL,
			buy_date    TEXT,
			buy_price   REAL,
			sell_date   TEXT,
			sell_price  REAL,
			return_pct  REAL,
			exit_reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(s)[:40], err)
		}
	}
	return nil
}

// RecordAnalysis stores the report summary and its listed trades in one transaction.
func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := recordFromReport(report)
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO analyses
		(run_id, timestamp, ticker, last_close, score, predicted_price, mse, model,
		 trade_action, sentiment, total_trades, win_rate, avg_return_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, ts.Unix(), rec.Ticker, rec.LastClose, rec.Score, rec.PredictedPrice,
		rec.MSE, rec.Model, string(rec.TradeAction), rec.Sentiment,
		rec.TotalTrades, rec.WinRate, rec.AvgReturnPct,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	for _, t := range report.Backtest {
		_, err := tx.ExecContext(ctx, `INSERT INTO backtest_trades
			(run_id, ticker, buy_date, buy_price, sell_date, sell_price, return_pct, exit_reason)
			VALUES (?,?,?,?,?,?,?,?)`,
			rec.RunID, rec.Ticker, t.BuyDate, t.BuyPrice, t.SellDate, t.SellPrice, t.ReturnPct, t.ExitReason,
		)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}
	return tx.Commit()
}

// RecentAnalyses returns the latest stored runs for ticker, newest first.
func (r *SQLiteRecorder) RecentAnalyses(ctx context.Context, ticker string, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		run_id, timestamp, ticker, last_close, score, predicted_price, mse, model,
		trade_action, sentiment, total_trades, win_rate, avg_return_pct
		FROM analyses WHERE ticker = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var ts int64
		var action string
		if err := rows.Scan(&rec.RunID, &ts, &rec.Ticker, &rec.LastClose, &rec.Score,
			&rec.PredictedPrice, &rec.MSE, &rec.Model, &action, &rec.Sentiment,
			&rec.TotalTrades, &rec.WinRate, &rec.AvgReturnPct); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0)
		rec.TradeAction = model.TradeAction(action)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TradeCount returns the number of stored trades of a run.
func (r *SQLiteRecorder) TradeCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM backtest_trades WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
