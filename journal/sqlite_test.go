package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleTrade(runID, tradeID string) TradeRecord {
	return TradeRecord{
		RunID:      runID,
		TradeID:    tradeID,
		Symbol:     "2330",
		Lots:       2,
		Shares:     2000,
		EntryPrice: 100,
		ExitPrice:  102,
		EntryTime:  time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
		ExitTime:   time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
		GrossPnL:   4000,
		Commission: 345,
		Tax:        306,
		Slippage:   81,
		TotalCost:  732,
		NetPnL:     3268,
		Reason:     "TakeProfit",
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := sampleTrade("R1", "T1")
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.TradesByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.TradeID, got[0].TradeID)
	assert.Equal(t, rec.Symbol, got[0].Symbol)
	assert.Equal(t, rec.Lots, got[0].Lots)
	assert.Equal(t, rec.Shares, got[0].Shares)
	assert.InDelta(t, rec.GrossPnL, got[0].GrossPnL, 1e-6)
	assert.InDelta(t, rec.Commission, got[0].Commission, 1e-6)
	assert.InDelta(t, rec.Tax, got[0].Tax, 1e-6)
	assert.InDelta(t, rec.NetPnL, got[0].NetPnL, 1e-6)
	assert.True(t, got[0].EntryTime.Equal(rec.EntryTime))
	assert.True(t, got[0].ExitTime.Equal(rec.ExitTime))
	assert.Equal(t, rec.Reason, got[0].Reason)
}

func TestSQLiteTradesByRunFiltersAndOrders(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	a := sampleTrade("R1", "T1")
	b := sampleTrade("R1", "T2")
	b.ExitTime = a.ExitTime.Add(-time.Hour)
	other := sampleTrade("R2", "T3")

	require.NoError(t, j.RecordTrade(a))
	require.NoError(t, j.RecordTrade(b))
	require.NoError(t, j.RecordTrade(other))

	got, err := j.TradesByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T2", got[0].TradeID)
	assert.Equal(t, "T1", got[1].TradeID)
}

func TestSQLiteEquityByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC)
	snap := EquitySnapshot{
		RunID:    "R1",
		Time:     ts,
		Capital:  1_003_268,
		Peak:     1_003_268,
		Drawdown: 0,
		State:    "ACTIVE",
	}
	require.NoError(t, j.RecordEquity(snap))

	got, err := j.EquityByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Time.Equal(ts))
	assert.InDelta(t, snap.Capital, got[0].Capital, 1e-6)
	assert.Equal(t, "ACTIVE", got[0].State)
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	run := RunRecord{
		RunID:          "R1",
		Symbol:         "2330",
		Strategy:       "rsi-reversal",
		Created:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Start:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		InitialCapital: 1_000_000,
		FinalCapital:   1_003_268,
		Trades:         1,
		Wins:           1,
		WinRate:        1,
		NetPnL:         3268,
		TotalCosts:     732,
		ReturnPct:      0.003268,
		FinalState:     "ACTIVE",
	}
	require.NoError(t, j.RecordRun(run))

	got, err := j.GetRun("R1")
	require.NoError(t, err)
	assert.Equal(t, run.Symbol, got.Symbol)
	assert.Equal(t, run.Strategy, got.Strategy)
	assert.Equal(t, run.Trades, got.Trades)
	assert.InDelta(t, run.NetPnL, got.NetPnL, 1e-6)
	assert.Equal(t, run.FinalState, got.FinalState)

	_, err = j.GetRun("missing")
	assert.Error(t, err)
}
