package protect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MaxDrawdownPct:       0.10,
		MaxDailyLossPct:      0.02,
		ConsecutiveLossLimit: 3,
		ReducedMultiplier:    0.5,
	}
}

func newController(t *testing.T, capital float64, cfg Config) *Controller {
	t.Helper()
	c, err := New(capital, cfg)
	require.NoError(t, err)
	return c
}

func TestSuspendOnMaxDrawdown(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDailyLossPct = 0.5 // keep the daily trigger out of the way
	c := newController(t, 1_000_000, cfg)

	require.NoError(t, c.Update(-100_000))

	assert.Equal(t, Suspended, c.State())
	ok, reason := c.CanTrade()
	assert.False(t, ok)
	assert.Equal(t, "max_drawdown exceeded", reason)
	assert.Zero(t, c.Multiplier())
}

func TestSuspendOnDailyLoss(t *testing.T) {
	t.Parallel()

	c := newController(t, 1_000_000, testConfig())

	require.NoError(t, c.Update(-25_000)) // 2.5% of the daily baseline

	assert.Equal(t, Suspended, c.State())
	ok, reason := c.CanTrade()
	assert.False(t, ok)
	assert.Equal(t, "max_daily_loss exceeded", reason)
}

func TestDrawdownReasonWinsWhenBothTrip(t *testing.T) {
	t.Parallel()

	c := newController(t, 1_000_000, testConfig())
	require.NoError(t, c.Update(-100_000))

	_, reason := c.CanTrade()
	assert.Equal(t, "max_drawdown exceeded", reason)
}

func TestReducedOnConsecutiveLosses(t *testing.T) {
	t.Parallel()

	c := newController(t, 1_000_000, testConfig())

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Update(-1_000))
	}

	assert.Equal(t, Reduced, c.State())
	assert.InDelta(t, 0.5, c.Multiplier(), 1e-12)
	ok, _ := c.CanTrade()
	assert.True(t, ok, "reduced mode still allows trading")

	// One win clears the streak.
	require.NoError(t, c.Update(5_000))
	assert.Equal(t, Active, c.State())
	assert.InDelta(t, 1.0, c.Multiplier(), 1e-12)
}

func TestReducedOnHalfDrawdown(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDailyLossPct = 0.5
	c := newController(t, 1_000_000, cfg)

	require.NoError(t, c.Update(-60_000)) // 6% >= 10%/2

	assert.Equal(t, Reduced, c.State())
}

func TestRecoveryIsAutomaticAndSymmetric(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDailyLossPct = 0.5
	c := newController(t, 1_000_000, cfg)

	require.NoError(t, c.Update(-100_000))
	require.Equal(t, Suspended, c.State())

	// Capital recovers above the half-limit on a later update.
	require.NoError(t, c.Update(70_000)) // drawdown now 3%
	assert.Equal(t, Active, c.State())
	ok, reason := c.CanTrade()
	assert.True(t, ok)
	assert.Empty(t, reason)
}

// Drawdown strictly increasing must never make the state more permissive.
func TestMonotoneProtection(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDailyLossPct = 0.5
	c := newController(t, 1_000_000, cfg)

	prev := c.State()
	for i := 0; i < 12; i++ {
		require.NoError(t, c.Update(-12_000))
		cur := c.State()
		assert.GreaterOrEqual(t, int(cur), int(prev),
			"state became more permissive while drawdown grew")
		prev = cur
	}
	assert.Equal(t, Suspended, c.State())
}

func TestRollDayResetsBaseline(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxDrawdownPct = 0.5 // isolate the daily trigger
	c := newController(t, 1_000_000, cfg)

	require.NoError(t, c.Update(-25_000))
	require.Equal(t, Suspended, c.State())

	c.RollDay()

	assert.Equal(t, Active, c.State())
	assert.InDelta(t, 975_000, c.Snapshot().DayStart, 1e-9)
}

func TestUpdateRejectsNaN(t *testing.T) {
	t.Parallel()

	c := newController(t, 1_000_000, testConfig())

	err := c.Update(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, c.Update(math.Inf(-1)), ErrInvalidInput)

	snap := c.Snapshot()
	assert.InDelta(t, 1_000_000, snap.Capital, 1e-9, "rejected update must not apply")
	assert.Equal(t, Active, snap.State)
}

func TestPeakTracksHighWaterMark(t *testing.T) {
	t.Parallel()

	c := newController(t, 1_000_000, testConfig())

	require.NoError(t, c.Update(50_000))
	require.NoError(t, c.Update(-10_000))

	snap := c.Snapshot()
	assert.InDelta(t, 1_050_000, snap.Peak, 1e-9)
	assert.InDelta(t, 10_000.0/1_050_000, snap.Drawdown, 1e-12)
	assert.Equal(t, 1, snap.ConsecutiveLosses)
	assert.Equal(t, 0, snap.ConsecutiveWins)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(0, testConfig())
	assert.Error(t, err)

	bad := testConfig()
	bad.ReducedMultiplier = 1.5
	_, err = New(1_000_000, bad)
	assert.Error(t, err)

	bad = testConfig()
	bad.ConsecutiveLossLimit = 0
	_, err = New(1_000_000, bad)
	assert.Error(t, err)
}
