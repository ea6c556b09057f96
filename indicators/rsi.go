package indicators

import (
	"fmt"

	"github.com/rustyeddy/daytrader/market"
)

// RSI is a streaming Relative Strength Index over bar closes, Wilder
// smoothed.
type RSI struct {
	period  int
	avgGain float64
	avgLoss float64
	count   int
	sumGain float64
	sumLoss float64
	prev    float64
	hasPrev bool
}

func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

func (r *RSI) Warmup() int {
	return r.period + 1
}

func (r *RSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.count = 0
	r.sumGain = 0
	r.sumLoss = 0
	r.hasPrev = false
}

func (r *RSI) Update(b market.Bar) {
	if !r.hasPrev {
		r.prev = b.Close
		r.hasPrev = true
		return
	}

	delta := b.Close - r.prev
	r.prev = b.Close

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.count < r.period {
		r.sumGain += gain
		r.sumLoss += loss
		r.count++
		if r.count == r.period {
			r.avgGain = r.sumGain / float64(r.period)
			r.avgLoss = r.sumLoss / float64(r.period)
		}
		return
	}

	r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
	r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
}

func (r *RSI) Ready() bool {
	return r.count >= r.period
}

// Value returns RSI in [0, 100], or 50 while warming up so a strategy that
// consumes it stays neutral until the indicator is ready.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 50
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
