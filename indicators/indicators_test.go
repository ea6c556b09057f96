package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/daytrader/market"
)

func barsFromCloses(closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:  t0.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	t.Parallel()

	sma := NewSMA(3)
	assert.False(t, sma.Ready())
	assert.Zero(t, sma.Value())

	for _, b := range barsFromCloses(10, 11, 12) {
		sma.Update(b)
	}
	assert.True(t, sma.Ready())
	assert.InDelta(t, 11, sma.Value(), 1e-9)

	sma.Update(barsFromCloses(18)[0])
	assert.InDelta(t, (11.0+12+18)/3, sma.Value(), 1e-9)

	sma.Reset()
	assert.False(t, sma.Ready())
}

func TestATRConstantRange(t *testing.T) {
	t.Parallel()

	// Flat closes with a constant 2-point bar range: TR is 2 everywhere,
	// so ATR must converge to exactly 2.
	atr := NewATR(5)
	for _, b := range barsFromCloses(100, 100, 100, 100, 100, 100, 100, 100) {
		atr.Update(b)
	}
	assert.True(t, atr.Ready())
	assert.InDelta(t, 2.0, atr.Value(), 1e-9)
}

func TestATRWarmup(t *testing.T) {
	t.Parallel()

	atr := NewATR(14)
	assert.Equal(t, 15, atr.Warmup())

	bars := barsFromCloses(100, 101, 102)
	for _, b := range bars {
		atr.Update(b)
	}
	assert.False(t, atr.Ready())
	assert.Zero(t, atr.Value(), "unready ATR reports 0 so sizing can detect it")
}

func TestATRGapUsesPrevClose(t *testing.T) {
	t.Parallel()

	atr := NewATR(1)
	bars := barsFromCloses(100)
	atr.Update(bars[0])

	// Gap up: high-low is 2 but high-prevClose is 11.
	atr.Update(market.Bar{Time: bars[0].Time.AddDate(0, 0, 1), Open: 110, High: 111, Low: 109, Close: 110})
	assert.InDelta(t, 11, atr.Value(), 1e-9)
}

func TestRSIBounds(t *testing.T) {
	t.Parallel()

	rsi := NewRSI(14)
	assert.InDelta(t, 50, rsi.Value(), 1e-9, "neutral while warming up")

	// Straight rally: all gains, RSI pegs at 100.
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	for _, b := range barsFromCloses(up...) {
		rsi.Update(b)
	}
	assert.True(t, rsi.Ready())
	assert.InDelta(t, 100, rsi.Value(), 1e-9)

	rsi.Reset()
	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	for _, b := range barsFromCloses(down...) {
		rsi.Update(b)
	}
	assert.InDelta(t, 0, rsi.Value(), 1e-9)
}

func TestRSIMixedStaysInRange(t *testing.T) {
	t.Parallel()

	rsi := NewRSI(14)
	closes := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
		46.03, 46.41, 46.22, 45.64,
	}
	for _, b := range barsFromCloses(closes...) {
		rsi.Update(b)
	}
	v := rsi.Value()
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 100.0)
	assert.InDelta(t, 60, v, 15, "well-known RSI(14) series lands in the 50-70 band")
}
