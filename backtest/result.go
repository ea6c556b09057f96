package backtest

import (
	"math"

	"github.com/rustyeddy/daytrader/protect"
)

// Summary aggregates a finished run's ledger. All ratios are fractions,
// not percentages.
type Summary struct {
	Trades         int
	Wins           int
	Losses         int
	WinRate        float64
	GrossPnL       float64
	TotalCosts     float64
	NetPnL         float64
	TotalReturn    float64
	MaxDrawdown    float64 // worst peak-to-trough on the capital trace
	ProfitFactor   float64 // gross wins / gross losses, 0 when no losers
	AvgNetPnL      float64
	AvgCostPct     float64 // cost per trade over entry notional
	MaxConsecWins  int
	MaxConsecLoss  int
	DegradedTrades int
}

// Result is everything a run produced: the trade ledger, the capital trace
// sampled after each realized trade, the final protection state and the
// derived summary.
type Result struct {
	RunID          string
	Symbol         string
	InitialCapital float64
	FinalCapital   float64
	Trades         []Trade
	CapitalTrace   []float64
	Protection     protect.Snapshot
	Summary        Summary
}

func newResult(runID, symbol string, initial float64, trades []Trade, trace []float64, snap protect.Snapshot) *Result {
	r := &Result{
		RunID:          runID,
		Symbol:         symbol,
		InitialCapital: initial,
		FinalCapital:   snap.Capital,
		Trades:         trades,
		CapitalTrace:   trace,
		Protection:     snap,
	}
	r.Summary = summarize(initial, trades, trace)
	return r
}

func summarize(initial float64, trades []Trade, trace []float64) Summary {
	var s Summary
	s.Trades = len(trades)

	var grossWins, grossLosses, notionalCostSum float64
	var runWins, runLosses int
	for _, t := range trades {
		s.GrossPnL += t.GrossPnL
		s.TotalCosts += t.Costs.TotalCost
		s.NetPnL += t.NetPnL
		if t.Degraded {
			s.DegradedTrades++
		}
		if t.NetPnL > 0 {
			s.Wins++
			grossWins += t.NetPnL
			runWins++
			runLosses = 0
		} else {
			s.Losses++
			grossLosses += -t.NetPnL
			runLosses++
			runWins = 0
		}
		if runWins > s.MaxConsecWins {
			s.MaxConsecWins = runWins
		}
		if runLosses > s.MaxConsecLoss {
			s.MaxConsecLoss = runLosses
		}
		if notional := t.EntryPrice * float64(t.Shares); notional > 0 {
			notionalCostSum += t.Costs.TotalCost / notional
		}
	}

	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
		s.AvgNetPnL = s.NetPnL / float64(s.Trades)
		s.AvgCostPct = notionalCostSum / float64(s.Trades)
	}
	if initial > 0 {
		s.TotalReturn = s.NetPnL / initial
	}
	if grossLosses > 0 {
		s.ProfitFactor = grossWins / grossLosses
	}
	s.MaxDrawdown = maxDrawdown(initial, trace)
	return s
}

// maxDrawdown walks the trace with the initial capital prepended so a run
// that only ever loses still reports its full depth.
func maxDrawdown(initial float64, trace []float64) float64 {
	peak := initial
	var worst float64
	for _, c := range trace {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := (peak - c) / peak; dd > worst {
				worst = dd
			}
		}
	}
	if math.IsNaN(worst) {
		return 0
	}
	return worst
}
