// Package protect implements the capital-protection state machine. It tracks
// running capital against its high-water mark and the daily baseline, counts
// consecutive losses, and answers two questions for the rest of the system:
// may we trade at all, and at what fraction of normal size.
package protect

import (
	"errors"
	"fmt"
	"math"
)

// State is the protection level. Ordering matters: a larger value is less
// permissive.
type State int

const (
	Active State = iota
	Reduced
	Suspended
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Reduced:
		return "reduced"
	case Suspended:
		return "suspended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidInput marks a non-finite P&L update. The update is not applied.
var ErrInvalidInput = errors.New("protect: invalid input")

// Config holds the protection thresholds as decimal fractions.
type Config struct {
	MaxDrawdownPct       float64 // suspend at this drawdown from peak
	MaxDailyLossPct      float64 // suspend at this loss from the day's baseline
	ConsecutiveLossLimit int     // reduce size after this many losses in a row
	ReducedMultiplier    float64 // position-size fraction while Reduced
}

// Controller is the equity protection state machine. It has no clock of its
// own: the owner calls Update once per realized trade and RollDay exactly
// once per trading-day boundary. It is not safe for concurrent use; a shared
// capital book requires the caller to serialize updates.
type Controller struct {
	cfg Config

	initial  float64
	current  float64
	peak     float64
	dayStart float64

	consecLosses int
	consecWins   int
	maxDDSeen    float64

	state  State
	reason string
}

// Snapshot is a read-only view of the controller for reporting.
type Snapshot struct {
	Capital           float64
	Peak              float64
	DayStart          float64
	Drawdown          float64
	DailyLoss         float64
	MaxDrawdownSeen   float64
	ConsecutiveLosses int
	ConsecutiveWins   int
	State             State
}

func New(initialCapital float64, cfg Config) (*Controller, error) {
	if initialCapital <= 0 || math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		return nil, fmt.Errorf("%w: initial capital %v", ErrInvalidInput, initialCapital)
	}
	if cfg.MaxDrawdownPct <= 0 || cfg.MaxDailyLossPct <= 0 {
		return nil, fmt.Errorf("protect: drawdown/daily-loss limits must be positive")
	}
	if cfg.ConsecutiveLossLimit < 1 {
		return nil, fmt.Errorf("protect: consecutive loss limit must be >= 1")
	}
	if cfg.ReducedMultiplier <= 0 || cfg.ReducedMultiplier >= 1 {
		return nil, fmt.Errorf("protect: reduced multiplier must be in (0, 1)")
	}
	return &Controller{
		cfg:      cfg,
		initial:  initialCapital,
		current:  initialCapital,
		peak:     initialCapital,
		dayStart: initialCapital,
		state:    Active,
	}, nil
}

// Update applies one realized P&L to capital and re-evaluates the protection
// state. Transitions are level-triggered: every update recomputes the state
// from the current drawdown, daily loss and loss streak, so recovery is
// automatic and symmetric.
func (c *Controller) Update(realizedPnL float64) error {
	if math.IsNaN(realizedPnL) || math.IsInf(realizedPnL, 0) {
		return fmt.Errorf("%w: realized pnl %v", ErrInvalidInput, realizedPnL)
	}

	c.current += realizedPnL
	if c.current > c.peak {
		c.peak = c.current
	}

	switch {
	case realizedPnL < 0:
		c.consecLosses++
		c.consecWins = 0
	case realizedPnL > 0:
		c.consecLosses = 0
		c.consecWins++
	}

	if dd := c.drawdown(); dd > c.maxDDSeen {
		c.maxDDSeen = dd
	}

	c.evaluate()
	return nil
}

// RollDay resets the daily baseline to current capital. The caller invokes it
// exactly once per trading-day boundary; the daily-loss trigger is then
// re-evaluated against the fresh baseline.
func (c *Controller) RollDay() {
	c.dayStart = c.current
	c.evaluate()
}

// Multiplier returns the position-size scaling for the current state:
// 1.0 while Active, the configured fraction while Reduced, 0.0 while
// Suspended.
func (c *Controller) Multiplier() float64 {
	switch c.state {
	case Suspended:
		return 0
	case Reduced:
		return c.cfg.ReducedMultiplier
	default:
		return 1.0
	}
}

// CanTrade reports whether new positions may be opened. When trading is
// blocked the second value names the triggering limit so callers can log it.
func (c *Controller) CanTrade() (bool, string) {
	if c.state == Suspended {
		return false, c.reason
	}
	return true, ""
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Capital:           c.current,
		Peak:              c.peak,
		DayStart:          c.dayStart,
		Drawdown:          c.drawdown(),
		DailyLoss:         c.dailyLoss(),
		MaxDrawdownSeen:   c.maxDDSeen,
		ConsecutiveLosses: c.consecLosses,
		ConsecutiveWins:   c.consecWins,
		State:             c.state,
	}
}

func (c *Controller) drawdown() float64 {
	if c.peak <= 0 {
		return 0
	}
	return (c.peak - c.current) / c.peak
}

func (c *Controller) dailyLoss() float64 {
	if c.dayStart <= 0 {
		return 0
	}
	return (c.dayStart - c.current) / c.dayStart
}

// evaluate recomputes the state from current levels. Drawdown is checked
// before the daily loss so the reported reason is stable when both trip.
func (c *Controller) evaluate() {
	dd := c.drawdown()
	dl := c.dailyLoss()

	switch {
	case dd >= c.cfg.MaxDrawdownPct:
		c.state = Suspended
		c.reason = "max_drawdown exceeded"
	case dl >= c.cfg.MaxDailyLossPct:
		c.state = Suspended
		c.reason = "max_daily_loss exceeded"
	case dd >= c.cfg.MaxDrawdownPct/2:
		c.state = Reduced
		c.reason = "drawdown above half limit"
	case c.consecLosses >= c.cfg.ConsecutiveLossLimit:
		c.state = Reduced
		c.reason = "consecutive loss limit reached"
	default:
		c.state = Active
		c.reason = ""
	}
}
