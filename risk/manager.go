// Package risk turns a candidate entry into a concrete position: how far
// away the stop goes and how many whole lots the capital at risk supports,
// after the protection controller has had its say.
package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/daytrader/market"
)

// ErrPositionLimit is returned when sizing is requested while the open
// position cap is already reached. It is an explicit rejection, not a silent
// zero-lot result.
var ErrPositionLimit = errors.New("risk: max open positions reached")

// ErrInvalidInput marks a malformed sizing request (non-positive or
// non-finite price).
var ErrInvalidInput = errors.New("risk: invalid input")

// Config holds the sizing rules. Percentages are decimal fractions.
type Config struct {
	RiskPctPerTrade   float64 // capital fraction risked between entry and stop
	StopATRMultiplier float64 // stop distance in ATRs
	FixedStopPct      float64 // fallback stop distance when ATR is unusable
	MinStopPct        float64 // stop never tighter than this fraction of price
	MaxStopPct        float64 // stop never looser than this fraction of price
	MaxPositionPct    float64 // position notional cap as a fraction of capital
	RewardRisk        float64 // take-profit as a multiple of stop distance, 0 disables
	MaxLotsPerTrade   int
	MaxOpenPositions  int
	LotSize           int64 // shares per lot, 1000 on TWSE
}

// Request is one sizing question: current price and volatility, the capital
// book, the protection multiplier in force, and how many positions are
// already open.
type Request struct {
	Price         float64
	ATR           float64
	Capital       float64
	Multiplier    float64
	OpenPositions int
}

// Sizing is the answer. A zero-lot sizing means "no trade" and is not an
// error. Degraded is set when the ATR input was unusable and the fixed
// percentage fallback was applied.
type Sizing struct {
	Lots         int
	Shares       int64
	StopLoss     float64
	TakeProfit   float64 // 0 when RewardRisk is disabled
	StopDistance float64
	RiskAmount   float64
	Degraded     bool
	DegradedNote string
}

type Manager struct {
	cfg Config
}

func New(cfg Config) (*Manager, error) {
	if cfg.RiskPctPerTrade <= 0 || cfg.RiskPctPerTrade > 0.1 {
		return nil, fmt.Errorf("risk: risk_pct_per_trade %v out of (0, 0.1]", cfg.RiskPctPerTrade)
	}
	if cfg.StopATRMultiplier <= 0 {
		return nil, fmt.Errorf("risk: stop_atr_multiplier must be positive")
	}
	if cfg.FixedStopPct <= 0 {
		return nil, fmt.Errorf("risk: fixed_stop_pct must be positive")
	}
	if cfg.MinStopPct <= 0 || cfg.MaxStopPct <= cfg.MinStopPct {
		return nil, fmt.Errorf("risk: need 0 < min_stop_pct < max_stop_pct")
	}
	if cfg.MaxPositionPct <= 0 || cfg.MaxPositionPct > 1 {
		return nil, fmt.Errorf("risk: max_position_pct %v out of (0, 1]", cfg.MaxPositionPct)
	}
	if cfg.RewardRisk < 0 {
		return nil, fmt.Errorf("risk: reward_risk must not be negative")
	}
	if cfg.MaxLotsPerTrade < 1 {
		return nil, fmt.Errorf("risk: max_lots_per_trade must be >= 1")
	}
	if cfg.MaxOpenPositions < 0 {
		return nil, fmt.Errorf("risk: max_open_positions must not be negative")
	}
	if cfg.LotSize < 1 {
		return nil, fmt.Errorf("risk: lot_size must be >= 1")
	}
	return &Manager{cfg: cfg}, nil
}

// Size computes stop-loss and lot count for a candidate long entry.
func (m *Manager) Size(req Request) (Sizing, error) {
	if req.OpenPositions >= m.cfg.MaxOpenPositions {
		return Sizing{}, fmt.Errorf("%w: %d open, cap %d",
			ErrPositionLimit, req.OpenPositions, m.cfg.MaxOpenPositions)
	}
	if req.Price <= 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		return Sizing{}, fmt.Errorf("%w: price %v", ErrInvalidInput, req.Price)
	}
	if req.Capital <= 0 || req.Multiplier <= 0 {
		return Sizing{}, nil // nothing to size, not an error
	}

	s := Sizing{}

	// Stop distance from volatility, with the fixed-percentage fallback when
	// the ATR input cannot be trusted.
	dist := req.ATR * m.cfg.StopATRMultiplier
	if req.ATR <= 0 || math.IsNaN(req.ATR) || math.IsInf(req.ATR, 0) {
		dist = req.Price * m.cfg.FixedStopPct
		s.Degraded = true
		s.DegradedNote = fmt.Sprintf("atr %v unusable, fixed %.1f%% stop applied",
			req.ATR, m.cfg.FixedStopPct*100)
	}
	dist = clamp(dist, req.Price*m.cfg.MinStopPct, req.Price*m.cfg.MaxStopPct)

	s.StopDistance = dist
	s.RiskAmount = req.Capital * m.cfg.RiskPctPerTrade

	shares := int64(math.Floor(s.RiskAmount / dist))

	// Notional cap: never commit more than the configured capital fraction
	// to a single position.
	if maxShares := int64(math.Floor(req.Capital * m.cfg.MaxPositionPct / req.Price)); shares > maxShares {
		shares = maxShares
	}

	lots := int(shares / m.cfg.LotSize)
	lots = int(math.Floor(float64(lots) * req.Multiplier))
	if lots > m.cfg.MaxLotsPerTrade {
		lots = m.cfg.MaxLotsPerTrade
	}
	if lots <= 0 {
		return Sizing{Degraded: s.Degraded, DegradedNote: s.DegradedNote}, nil
	}

	s.Lots = lots
	s.Shares = int64(lots) * m.cfg.LotSize
	s.StopLoss = market.RoundToTick(req.Price - dist)
	if m.cfg.RewardRisk > 0 {
		s.TakeProfit = market.RoundToTick(req.Price + dist*m.cfg.RewardRisk)
	}
	return s, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
