// Package journal persists what a run did: every closed trade, the capital
// trace after each trade, and the run's final summary row.
package journal

import "time"

// TradeRecord is one closed round-trip. Costs are broken out so queries can
// aggregate friction separately from direction.
type TradeRecord struct {
	RunID      string
	TradeID    string
	Symbol     string
	Lots       int
	Shares     int64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	GrossPnL   float64
	Commission float64
	Tax        float64
	Slippage   float64
	TotalCost  float64
	NetPnL     float64
	Reason     string
}

// EquitySnapshot is the capital book right after a trade settled.
type EquitySnapshot struct {
	RunID    string
	Time     time.Time
	Capital  float64
	Peak     float64
	Drawdown float64
	State    string
}

// RunRecord summarizes a finished run for the runs table.
type RunRecord struct {
	RunID          string
	Symbol         string
	Strategy       string
	Created        time.Time
	Start          time.Time
	End            time.Time
	InitialCapital float64
	FinalCapital   float64
	Trades         int
	Wins           int
	Losses         int
	WinRate        float64
	NetPnL         float64
	TotalCosts     float64
	ReturnPct      float64
	MaxDrawdownPct float64
	ProfitFactor   float64
	FinalState     string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordRun(RunRecord) error
	Close() error
}
