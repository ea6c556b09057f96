package market

import "fmt"

// BarSeries is the validated, immutable replay buffer for one symbol. Every
// bar passed the OHLCV invariant at construction and timestamps are strictly
// increasing, so the engine can trust any slice of it.
type BarSeries struct {
	symbol string
	bars   []Bar
}

// NewBarSeries validates bars and builds a series. Any bar violating the
// OHLCV invariant, or a timestamp that does not strictly increase, yields a
// *DataIntegrityError.
func NewBarSeries(symbol string, bars []Bar) (*BarSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("bar series: symbol required")
	}
	for i, b := range bars {
		if reason := b.check(); reason != "" {
			return nil, &DataIntegrityError{Index: i, Time: b.Time, Reason: reason}
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, &DataIntegrityError{Index: i, Time: b.Time, Reason: "timestamp not increasing"}
		}
	}
	own := make([]Bar, len(bars))
	copy(own, bars)
	return &BarSeries{symbol: symbol, bars: own}, nil
}

func (s *BarSeries) Symbol() string { return s.symbol }
func (s *BarSeries) Len() int       { return len(s.bars) }
func (s *BarSeries) At(i int) Bar   { return s.bars[i] }

// History returns bars [0..i] for a strategy evaluating step i. The slice is
// capacity-clipped so an appending caller cannot overwrite bar i+1 or later.
func (s *BarSeries) History(i int) []Bar {
	return s.bars[: i+1 : i+1]
}
