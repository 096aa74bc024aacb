// Package broker keeps a paper trading account that follows the trade hints.
// No order ever leaves the process.
package broker

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"StockSignal/internal/model"
)

// maxFills bounds the stored fill history.
const maxFills = 50

var (
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrNoPosition       = errors.New("no open position")
)

// PaperBroker handles paper orders with concurrency safety.
type PaperBroker struct {
	mu        sync.Mutex
	state     *model.PortfolioState
	filePath  string
	orderSize float64
	log       *logrus.Logger
	now       func() time.Time
}

// NewPaperBroker creates a PaperBroker, loading or initializing state from disk.
// Every order trades orderSize shares.
func NewPaperBroker(filePath string, startingCash, orderSize float64, log *logrus.Logger) (*PaperBroker, error) {
	if orderSize <= 0 {
		return nil, fmt.Errorf("order size must be positive")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	// Initialize if fresh state
	if state.StartingCash == 0 {
		state.StartingCash = startingCash
		state.Cash = startingCash
	}
	if state.Positions == nil {
		state.Positions = make(map[string]model.Position)
	}

	b := &PaperBroker{state: state, filePath: filePath, orderSize: orderSize, log: log, now: time.Now}
	if err := b.save(); err != nil {
		return nil, err
	}
	return b, nil
}

// State returns a copy of the current account.
func (b *PaperBroker) State() model.PortfolioState {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := *b.state
	s.Positions = make(map[string]model.Position, len(b.state.Positions))
	for k, v := range b.state.Positions {
		s.Positions[k] = v
	}
	s.Fills = append([]model.Fill(nil), b.state.Fills...)
	return s
}

// Execute fills one paper order at price. A buy needs enough cash for a full
// order, a sell closes up to one order of an existing position.
func (b *PaperBroker) Execute(ticker string, action model.TradeAction, price float64) (model.Fill, error) {
	ticker = strings.ToUpper(ticker)
	if !model.IsFinite(price) || price <= 0 {
		return model.Fill{}, fmt.Errorf("invalid price %v", price)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fill := model.Fill{Ticker: ticker, Action: action, Price: price, At: b.now()}
	pos, held := b.state.Positions[ticker]

	switch action {
	case model.ActionBuy:
		cost := b.orderSize * price
		if cost > b.state.Cash {
			return model.Fill{}, fmt.Errorf("buy %s: %w (need %.2f, have %.2f)", ticker, ErrInsufficientCash, cost, b.state.Cash)
		}
		if !held {
			pos = model.Position{Ticker: ticker, OpenedAt: fill.At}
		}
		pos.AvgPrice = (pos.AvgPrice*pos.Shares + cost) / (pos.Shares + b.orderSize)
		pos.Shares += b.orderSize
		b.state.Positions[ticker] = pos
		b.state.Cash -= cost
		fill.Shares = b.orderSize
	case model.ActionSell:
		if !held || pos.Shares <= 0 {
			return model.Fill{}, fmt.Errorf("sell %s: %w", ticker, ErrNoPosition)
		}
		qty := math.Min(b.orderSize, pos.Shares)
		fill.Shares = qty
		fill.RealizedPnL = (price - pos.AvgPrice) * qty
		pos.Shares -= qty
		if pos.Shares <= 0 {
			delete(b.state.Positions, ticker)
		} else {
			b.state.Positions[ticker] = pos
		}
		b.state.Cash += qty * price
		b.state.RealizedPnL += fill.RealizedPnL
	default:
		return model.Fill{}, fmt.Errorf("unsupported action %q", action)
	}

	fill.CashAfter = b.state.Cash
	b.state.Fills = append(b.state.Fills, fill)
	if len(b.state.Fills) > maxFills {
		b.state.Fills = b.state.Fills[len(b.state.Fills)-maxFills:]
	}

	if err := b.save(); err != nil {
		b.log.WithError(err).Error("failed to save portfolio state")
	}
	return fill, nil
}

func (b *PaperBroker) save() error {
	return SaveState(b.filePath, b.state)
}
