package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, lots, shares, entry_price, exit_price,
		 entry_time, exit_time, gross_pnl, commission, tax, slippage,
		 total_cost, net_pnl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Lots, t.Shares, t.EntryPrice,
		t.ExitPrice, t.EntryTime, t.ExitTime, t.GrossPnL, t.Commission,
		t.Tax, t.Slippage, t.TotalCost, t.NetPnL, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, capital, peak, drawdown, state)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Capital, e.Peak, e.Drawdown, e.State,
	)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, symbol, strategy, created, start, end, initial_capital,
		 final_capital, trades, wins, losses, win_rate, net_pnl, total_costs,
		 return_pct, max_drawdown_pct, profit_factor, final_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Symbol, r.Strategy, r.Created, r.Start, r.End,
		r.InitialCapital, r.FinalCapital, r.Trades, r.Wins, r.Losses,
		r.WinRate, r.NetPnL, r.TotalCosts, r.ReturnPct, r.MaxDrawdownPct,
		r.ProfitFactor, r.FinalState,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
