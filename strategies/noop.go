package strategies

import "github.com/rustyeddy/daytrader/market"

// Noop never trades. Useful as a baseline and in engine tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Reset() {}

func (Noop) Signal([]market.Bar) Signal { return Signal{Action: Hold} }

func init() {
	Register("noop", func() BarStrategy { return Noop{} })
}
