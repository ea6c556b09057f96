package strategies

import (
	"github.com/rustyeddy/daytrader/indicators"
	"github.com/rustyeddy/daytrader/market"
)

// SMACross trades fast/slow simple moving average crossovers: BUY when the
// fast average crosses above the slow one, SELL on the opposite cross.
type SMACross struct {
	FastPeriod int
	SlowPeriod int

	fast *indicators.SMA
	slow *indicators.SMA

	seen     int
	lastDiff float64
	haveDiff bool
}

func NewSMACross(fast, slow int) *SMACross {
	return &SMACross{
		FastPeriod: fast,
		SlowPeriod: slow,
		fast:       indicators.NewSMA(fast),
		slow:       indicators.NewSMA(slow),
	}
}

func (s *SMACross) Name() string { return "sma-cross" }

func (s *SMACross) Reset() {
	s.fast.Reset()
	s.slow.Reset()
	s.seen = 0
	s.haveDiff = false
}

func (s *SMACross) Signal(history []market.Bar) Signal {
	if len(history) < s.seen {
		s.Reset()
	}
	for _, b := range history[s.seen:] {
		s.fast.Update(b)
		s.slow.Update(b)
	}
	s.seen = len(history)

	if !s.fast.Ready() || !s.slow.Ready() {
		return Signal{Action: Hold}
	}

	diff := s.fast.Value() - s.slow.Value()
	defer func() {
		s.lastDiff = diff
		s.haveDiff = true
	}()

	if !s.haveDiff {
		return Signal{Action: Hold}
	}
	if s.lastDiff <= 0 && diff > 0 {
		return Signal{Action: Buy}
	}
	if s.lastDiff >= 0 && diff < 0 {
		return Signal{Action: Sell}
	}
	return Signal{Action: Hold}
}

func init() {
	Register("sma-cross", func() BarStrategy { return NewSMACross(5, 20) })
}
