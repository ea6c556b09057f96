package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var r RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, symbol, strategy, created, start, end, initial_capital,
		       final_capital, trades, wins, losses, win_rate, net_pnl,
		       total_costs, return_pct, max_drawdown_pct, profit_factor, final_state
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID, &r.Symbol, &r.Strategy, &r.Created, &r.Start, &r.End,
		&r.InitialCapital, &r.FinalCapital, &r.Trades, &r.Wins, &r.Losses,
		&r.WinRate, &r.NetPnL, &r.TotalCosts, &r.ReturnPct,
		&r.MaxDrawdownPct, &r.ProfitFactor, &r.FinalState,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// TradesByRun returns a run's trades ordered by exit time.
func (j *SQLite) TradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, lots, shares, entry_price, exit_price,
		       entry_time, exit_time, gross_pnl, commission, tax, slippage,
		       total_cost, net_pnl, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.TradeID, &t.RunID, &t.Symbol, &t.Lots, &t.Shares,
			&t.EntryPrice, &t.ExitPrice, &t.EntryTime, &t.ExitTime,
			&t.GrossPnL, &t.Commission, &t.Tax, &t.Slippage,
			&t.TotalCost, &t.NetPnL, &t.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EquityByRun returns a run's capital trace ordered by time.
func (j *SQLite) EquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, capital, peak, drawdown, state
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Capital, &e.Peak, &e.Drawdown, &e.State); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TradesClosedBetween returns trades across all runs whose exit_time is
// within [start, end).
func (j *SQLite) TradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, lots, shares, entry_price, exit_price,
		       entry_time, exit_time, gross_pnl, commission, tax, slippage,
		       total_cost, net_pnl, reason
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.TradeID, &t.RunID, &t.Symbol, &t.Lots, &t.Shares,
			&t.EntryPrice, &t.ExitPrice, &t.EntryTime, &t.ExitTime,
			&t.GrossPnL, &t.Commission, &t.Tax, &t.Slippage,
			&t.TotalCost, &t.NetPnL, &t.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
