// Package backtest replays a validated bar series through a strategy,
// realizing each signal one bar later, pricing every closed trade with the
// cost model and feeding the net result into the protection controller
// before the next bar is considered.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/daytrader/costs"
	"github.com/rustyeddy/daytrader/indicators"
	"github.com/rustyeddy/daytrader/internal/id"
	"github.com/rustyeddy/daytrader/internal/logger"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/protect"
	"github.com/rustyeddy/daytrader/risk"
	"github.com/rustyeddy/daytrader/strategies"
)

// Exit reasons, in the priority order they are evaluated against the
// realized bar. A bar whose range spans both stop and target resolves
// stop-first (the pessimistic read).
const (
	ReasonStopLoss   = "StopLoss"
	ReasonTakeProfit = "TakeProfit"
	ReasonSignal     = "Signal"
	ReasonEndOfData  = "EndOfData"
)

// Position is the single open position for a symbol. At most one exists at a
// time; there is no averaging or pyramiding.
type Position struct {
	Symbol     string
	EntryPrice float64
	Lots       int
	Shares     int64
	StopLoss   float64
	TakeProfit float64 // 0 means none
	EntryTime  time.Time
	Degraded   bool // sized with the fixed-stop fallback
}

// Trade is the immutable closed record of a Position.
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Lots       int
	Shares     int64
	Intraday   bool
	GrossPnL   float64
	Costs      costs.Breakdown
	NetPnL     float64
	Reason     string
	Degraded   bool
}

// Engine drives one symbol's simulation against one capital book. It is
// single-threaded: each bar is processed to completion before the next.
type Engine struct {
	runID   string
	symbol  string
	strat   strategies.BarStrategy
	riskMgr *risk.Manager
	protCtl *protect.Controller
	costMdl costs.Model
	jrnl    journal.Journal // optional
	initCap float64

	atr     *indicators.ATR
	history []market.Bar
	pos     *Position
	pending strategies.Signal

	trades  []Trade
	capital []float64 // capital after each realized trade
}

// Deps carries the engine's collaborators. Journal may be nil.
type Deps struct {
	Strategy   strategies.BarStrategy
	Risk       *risk.Manager
	Protection *protect.Controller
	Costs      costs.Model
	Journal    journal.Journal
	ATRPeriod  int
}

func NewEngine(symbol string, initialCapital float64, d Deps) (*Engine, error) {
	if symbol == "" {
		return nil, fmt.Errorf("backtest: symbol required")
	}
	if d.Strategy == nil {
		return nil, fmt.Errorf("backtest: strategy required")
	}
	if d.Risk == nil || d.Protection == nil {
		return nil, fmt.Errorf("backtest: risk manager and protection controller required")
	}
	if d.ATRPeriod <= 0 {
		return nil, fmt.Errorf("backtest: atr period must be positive")
	}
	if initialCapital <= 0 {
		return nil, fmt.Errorf("backtest: initial capital must be positive")
	}

	e := &Engine{
		runID:   id.New(),
		symbol:  symbol,
		strat:   d.Strategy,
		riskMgr: d.Risk,
		protCtl: d.Protection,
		costMdl: d.Costs,
		jrnl:    d.Journal,
		initCap: initialCapital,
		atr:     indicators.NewATR(d.ATRPeriod),
	}
	e.strat.Reset()
	return e, nil
}

func (e *Engine) RunID() string { return e.runID }

// Run replays the whole series. Cancellation is cooperative: the context is
// checked between bars, never mid-bar.
func (e *Engine) Run(ctx context.Context, series *market.BarSeries) (*Result, error) {
	if series == nil {
		return nil, fmt.Errorf("backtest: nil bar series")
	}
	if series.Symbol() != e.symbol {
		return nil, fmt.Errorf("backtest: series %q does not match engine symbol %q",
			series.Symbol(), e.symbol)
	}

	for i := 0; i < series.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest: run cancelled: %w", err)
		}
		if err := e.step(series.At(i)); err != nil {
			return nil, err
		}
	}
	return e.finish()
}

// step processes one bar: day rollover, exits for the open position, fill of
// the signal generated on the previous bar, then a fresh signal on the
// history up to and including this bar.
func (e *Engine) step(bar market.Bar) error {
	// Bars arriving incrementally (live session) are re-validated here; a
	// series from NewBarSeries already passed, the check is cheap.
	if reason := bar.Validate(); reason != nil {
		return reason
	}
	if n := len(e.history); n > 0 {
		last := e.history[n-1]
		if !last.Time.Before(bar.Time) {
			return &market.DataIntegrityError{Index: n, Time: bar.Time, Reason: "timestamp not increasing"}
		}
		if !market.SameTradingDay(last.Time, bar.Time) {
			e.protCtl.RollDay()
		}
	}

	// 1) Exits for the open position, evaluated against this bar's range.
	if e.pos != nil {
		if exitPx, reason, hit := e.checkExit(bar); hit {
			if err := e.closePosition(bar.Time, exitPx, reason); err != nil {
				return err
			}
		}
	}

	// 2) Fill the pending signal from the previous bar at this bar's open.
	if e.pending.Action == strategies.Buy && e.pos == nil {
		e.openPosition(bar)
	}
	e.pending = strategies.Signal{}

	// 3) Ask the strategy for this bar's signal. The history slice ends at
	// this bar; the fill above already used it, so no lookahead is possible.
	e.history = append(e.history, bar)
	hist := e.history[:len(e.history):len(e.history)]
	e.pending = e.strat.Signal(hist)

	// ATR feeds sizing on the NEXT bar's fill; updating it last keeps the
	// sizing input causal too.
	e.atr.Update(bar)
	return nil
}

// checkExit resolves stop, take and strategy exit in priority order.
func (e *Engine) checkExit(bar market.Bar) (exitPx float64, reason string, hit bool) {
	p := e.pos
	if bar.Low <= p.StopLoss {
		return p.StopLoss, ReasonStopLoss, true
	}
	if p.TakeProfit > 0 && bar.High >= p.TakeProfit {
		return p.TakeProfit, ReasonTakeProfit, true
	}
	if e.pending.Action == strategies.Sell {
		return bar.Close, ReasonSignal, true
	}
	return 0, "", false
}

func (e *Engine) openPosition(bar market.Bar) {
	ok, reason := e.protCtl.CanTrade()
	if !ok {
		logger.Warnf("%s %s: entry skipped, trading suspended: %s",
			e.symbol, bar.Time.Format("2006-01-02"), reason)
		return
	}

	entry := bar.Open
	sizing, err := e.riskMgr.Size(risk.Request{
		Price:         entry,
		ATR:           e.atr.Value(),
		Capital:       e.protCtl.Snapshot().Capital,
		Multiplier:    e.protCtl.Multiplier(),
		OpenPositions: e.openCount(),
	})
	if err != nil {
		// Position-limit and input rejections are "no trade", not run
		// failures; the ledger must not see a phantom entry.
		logger.Warnf("%s %s: entry rejected: %v", e.symbol, bar.Time.Format("2006-01-02"), err)
		return
	}
	if sizing.Lots == 0 {
		return
	}
	if sizing.Degraded {
		logger.Warnf("%s %s: %s", e.symbol, bar.Time.Format("2006-01-02"), sizing.DegradedNote)
	}

	e.pos = &Position{
		Symbol:     e.symbol,
		EntryPrice: entry,
		Lots:       sizing.Lots,
		Shares:     sizing.Shares,
		StopLoss:   sizing.StopLoss,
		TakeProfit: sizing.TakeProfit,
		EntryTime:  bar.Time,
		Degraded:   sizing.Degraded,
	}
}

func (e *Engine) closePosition(exitTime time.Time, exitPx float64, reason string) error {
	p := e.pos
	e.pos = nil

	intraday := market.SameTradingDay(p.EntryTime, exitTime)
	bd, err := e.costMdl.PriceTrade(p.EntryPrice, exitPx, p.Shares, intraday)
	if err != nil {
		return fmt.Errorf("backtest: pricing close of %s: %w", p.Symbol, err)
	}

	tr := Trade{
		Symbol:     p.Symbol,
		EntryTime:  p.EntryTime,
		ExitTime:   exitTime,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPx,
		Lots:       p.Lots,
		Shares:     p.Shares,
		Intraday:   intraday,
		GrossPnL:   bd.GrossPnL,
		Costs:      bd,
		NetPnL:     bd.NetPnL,
		Reason:     reason,
		Degraded:   p.Degraded,
	}
	e.trades = append(e.trades, tr)

	// Protection state must reflect this trade before the next bar.
	if err := e.protCtl.Update(bd.NetPnL); err != nil {
		return fmt.Errorf("backtest: protection update: %w", err)
	}
	snap := e.protCtl.Snapshot()
	e.capital = append(e.capital, snap.Capital)

	if e.jrnl != nil {
		if err := e.jrnl.RecordTrade(journal.TradeRecord{
			RunID:      e.runID,
			TradeID:    id.New(),
			Symbol:     tr.Symbol,
			Lots:       tr.Lots,
			Shares:     tr.Shares,
			EntryPrice: tr.EntryPrice,
			ExitPrice:  tr.ExitPrice,
			EntryTime:  tr.EntryTime,
			ExitTime:   tr.ExitTime,
			GrossPnL:   tr.GrossPnL,
			Commission: bd.Commission,
			Tax:        bd.Tax,
			Slippage:   bd.Slippage,
			TotalCost:  bd.TotalCost,
			NetPnL:     tr.NetPnL,
			Reason:     tr.Reason,
		}); err != nil {
			return fmt.Errorf("backtest: journal trade: %w", err)
		}
		if err := e.jrnl.RecordEquity(journal.EquitySnapshot{
			RunID:    e.runID,
			Time:     exitTime,
			Capital:  snap.Capital,
			Peak:     snap.Peak,
			Drawdown: snap.Drawdown,
			State:    snap.State.String(),
		}); err != nil {
			return fmt.Errorf("backtest: journal equity: %w", err)
		}
	}
	return nil
}

// finish force-closes any open position at the last close and derives the
// summary from the ledger and capital trace.
func (e *Engine) finish() (*Result, error) {
	if e.pos != nil && len(e.history) > 0 {
		last := e.history[len(e.history)-1]
		if err := e.closePosition(last.Time, last.Close, ReasonEndOfData); err != nil {
			return nil, err
		}
	}
	return newResult(e.runID, e.symbol, e.initCap, e.trades, e.capital, e.protCtl.Snapshot()), nil
}

func (e *Engine) openCount() int {
	if e.pos != nil {
		return 1
	}
	return 0
}
