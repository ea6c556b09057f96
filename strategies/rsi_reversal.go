package strategies

import (
	"github.com/rustyeddy/daytrader/indicators"
	"github.com/rustyeddy/daytrader/market"
)

// RSIReversal buys oversold and exits overbought: BUY when RSI drops below
// the lower band, SELL when it rises above the upper band, HOLD otherwise.
type RSIReversal struct {
	Period int
	Lower  float64
	Upper  float64

	rsi  *indicators.RSI
	seen int
}

func NewRSIReversal(period int, lower, upper float64) *RSIReversal {
	return &RSIReversal{
		Period: period,
		Lower:  lower,
		Upper:  upper,
		rsi:    indicators.NewRSI(period),
	}
}

func (s *RSIReversal) Name() string { return "rsi-reversal" }

func (s *RSIReversal) Reset() {
	s.rsi.Reset()
	s.seen = 0
}

func (s *RSIReversal) Signal(history []market.Bar) Signal {
	// The indicator is incremental; feed it only the bars it has not seen.
	// Reset when the history restarts (new run over the same instance).
	if len(history) < s.seen {
		s.Reset()
	}
	for _, b := range history[s.seen:] {
		s.rsi.Update(b)
	}
	s.seen = len(history)

	if !s.rsi.Ready() {
		return Signal{Action: Hold}
	}

	v := s.rsi.Value()
	switch {
	case v < s.Lower:
		return Signal{Action: Buy, Strength: (s.Lower - v) / s.Lower}
	case v > s.Upper:
		return Signal{Action: Sell, Strength: (v - s.Upper) / (100 - s.Upper)}
	default:
		return Signal{Action: Hold}
	}
}

func init() {
	Register("rsi-reversal", func() BarStrategy { return NewRSIReversal(14, 30, 70) })
}
