package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		RiskPctPerTrade:   0.02,
		StopATRMultiplier: 2.0,
		FixedStopPct:      0.02,
		MinStopPct:        0.01,
		MaxStopPct:        0.05,
		MaxPositionPct:    0.50,
		RewardRisk:        2.0,
		MaxLotsPerTrade:   10,
		MaxOpenPositions:  3,
		LotSize:           1000,
	}
}

func newManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	return m
}

func TestSizeFromATR(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	s, err := m.Size(Request{
		Price:      100,
		ATR:        1.5, // stop distance 3.0
		Capital:    1_000_000,
		Multiplier: 1.0,
	})
	require.NoError(t, err)

	// risk 20,000 / 3.0 = 6666 shares, notional-capped to 5000 -> 5 lots
	assert.Equal(t, 5, s.Lots)
	assert.EqualValues(t, 5000, s.Shares)
	assert.InDelta(t, 3.0, s.StopDistance, 1e-9)
	assert.InDelta(t, 97.0, s.StopLoss, 1e-9)
	assert.InDelta(t, 106.0, s.TakeProfit, 1e-9)
	assert.False(t, s.Degraded)
}

func TestSizeDegradedFallback(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	for _, atr := range []float64{0, -1, math.NaN()} {
		s, err := m.Size(Request{
			Price:      100,
			ATR:        atr,
			Capital:    1_000_000,
			Multiplier: 1.0,
		})
		require.NoError(t, err)

		assert.True(t, s.Degraded, "atr %v", atr)
		assert.NotEmpty(t, s.DegradedNote)
		assert.InDelta(t, 98.0, s.StopLoss, 1e-9, "fixed 2%% stop from 100")
		assert.False(t, math.IsNaN(s.StopLoss))
	}
}

func TestStopDistanceClamped(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())

	// Tiny ATR: implied stop tighter than 1% of price gets widened.
	s, err := m.Size(Request{Price: 100, ATR: 0.1, Capital: 1_000_000, Multiplier: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.StopDistance, 1e-9)

	// Huge ATR: stop capped at 5% of price.
	s, err = m.Size(Request{Price: 100, ATR: 10, Capital: 1_000_000, Multiplier: 1})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, s.StopDistance, 1e-9)
}

func TestLotCap(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxLotsPerTrade = 3
	m := newManager(t, cfg)

	s, err := m.Size(Request{Price: 100, ATR: 1.5, Capital: 10_000_000, Multiplier: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Lots)
	assert.LessOrEqual(t, s.Lots, cfg.MaxLotsPerTrade)
}

func TestNotionalCap(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxPositionPct = 0.10
	m := newManager(t, cfg)

	// risk sizing alone would give 6 lots; 10% of 1M at price 100 allows
	// only 1000 shares.
	s, err := m.Size(Request{Price: 100, ATR: 1.5, Capital: 1_000_000, Multiplier: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Lots)
}

func TestProtectionMultiplierScalesLots(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	req := Request{Price: 100, ATR: 1.5, Capital: 1_000_000}

	req.Multiplier = 0.5
	s, err := m.Size(req)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Lots, "5 lots halved, floored")

	req.Multiplier = 0
	s, err = m.Size(req)
	require.NoError(t, err)
	assert.Zero(t, s.Lots, "suspended book sizes to nothing")
}

func TestPositionLimitRejected(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	_, err := m.Size(Request{Price: 100, ATR: 1.5, Capital: 1_000_000, Multiplier: 1, OpenPositions: 3})
	assert.ErrorIs(t, err, ErrPositionLimit)

	// A zero cap rejects immediately rather than truncating to zero lots.
	cfg := testConfig()
	cfg.MaxOpenPositions = 0
	m = newManager(t, cfg)
	_, err = m.Size(Request{Price: 100, ATR: 1.5, Capital: 1_000_000, Multiplier: 1})
	assert.ErrorIs(t, err, ErrPositionLimit)
}

func TestSizeInvalidPrice(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	for _, p := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := m.Size(Request{Price: p, ATR: 1, Capital: 1_000_000, Multiplier: 1})
		assert.ErrorIs(t, err, ErrInvalidInput, "price %v", p)
	}
}

func TestZeroLotsIsNoTrade(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	s, err := m.Size(Request{Price: 500, ATR: 5, Capital: 50_000, Multiplier: 1})
	require.NoError(t, err)
	assert.Zero(t, s.Lots)
	assert.Zero(t, s.Shares)
}

func TestStopRoundedToTick(t *testing.T) {
	t.Parallel()

	m := newManager(t, testConfig())
	// price 43, ATR 0.52 -> distance 1.04, raw stop 41.96 -> tick 0.05 -> 41.95
	s, err := m.Size(Request{Price: 43, ATR: 0.52, Capital: 1_000_000, Multiplier: 1})
	require.NoError(t, err)
	assert.InDelta(t, 41.95, s.StopLoss, 1e-9)
	assert.InDelta(t, 45.10, s.TakeProfit, 1e-9)
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	bad := testConfig()
	bad.RiskPctPerTrade = 0.5
	_, err := New(bad)
	assert.Error(t, err)

	bad = testConfig()
	bad.MinStopPct = 0.05
	bad.MaxStopPct = 0.01
	_, err = New(bad)
	assert.Error(t, err)

	bad = testConfig()
	bad.LotSize = 0
	_, err = New(bad)
	assert.Error(t, err)
}
