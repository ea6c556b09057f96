package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV observation for a fixed time interval. Bars are immutable
// once ingested; the backtest replay buffer owns them for the duration of a
// run.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// DataIntegrityError reports a bar that violates the OHLCV invariant, or a
// series whose timestamps are out of order. The engine aborts the run on this
// error instead of skipping the bar: a silently dropped bar corrupts the
// causal ordering of the replay.
type DataIntegrityError struct {
	Index  int
	Time   time.Time
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("bar %d (%s): %s", e.Index, e.Time.Format(time.RFC3339), e.Reason)
}

// Validate checks the single-bar invariant:
// Low <= min(Open, Close) <= max(Open, Close) <= High, all prices positive
// and finite, volume non-negative.
func (b Bar) Validate() error {
	if reason := b.check(); reason != "" {
		return &DataIntegrityError{Index: -1, Time: b.Time, Reason: reason}
	}
	return nil
}

func (b Bar) check() string {
	for _, p := range [4]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return "non-finite price"
		}
		if p <= 0 {
			return fmt.Sprintf("non-positive price %v", p)
		}
	}
	if b.High < b.Low {
		return fmt.Sprintf("high %v below low %v", b.High, b.Low)
	}
	if b.Open > b.High || b.Close > b.High {
		return fmt.Sprintf("high %v below open/close", b.High)
	}
	if b.Open < b.Low || b.Close < b.Low {
		return fmt.Sprintf("low %v above open/close", b.Low)
	}
	if b.Volume < 0 {
		return fmt.Sprintf("negative volume %d", b.Volume)
	}
	if b.Time.IsZero() {
		return "zero timestamp"
	}
	return ""
}

// SameTradingDay reports whether two timestamps fall on the same trading day.
// Times are compared in their own location; daily bars carry the exchange
// session date already.
func SameTradingDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
