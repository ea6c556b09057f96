// Package costs prices a completed round trip (buy then sell) on Taiwan
// listed equities: brokerage commission on both legs, securities transaction
// tax on the sell leg, plus a slippage estimate. The model is a pure
// function; identical inputs always produce an identical breakdown.
package costs

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput marks malformed numeric arguments (NaN, non-positive price
// or quantity). The model never coerces such inputs to zero: a zero-valued
// cost on a real trade would misstate net P&L downstream.
var ErrInvalidInput = errors.New("costs: invalid input")

// Params holds the fee schedule. Rates are decimal fractions (0.001425 =
// 0.1425%), slippage is in basis points.
type Params struct {
	CommissionRate     float64 // per leg, e.g. 0.001425
	CommissionDiscount float64 // broker discount, 1.0 = none, 0.6 = 40% off
	MinCommission      float64 // floor per leg, NT$
	TaxRateStandard    float64 // sell leg, position held overnight
	TaxRateIntraday    float64 // sell leg, opened and closed the same session
	SlippageBps        float64 // estimate on both legs combined
}

// Breakdown itemizes the cost of one round trip. All amounts are NT$.
type Breakdown struct {
	BuyCommission  float64
	SellCommission float64
	Commission     float64 // both legs
	Tax            float64 // sell leg only
	Slippage       float64
	TotalCost      float64
	Breakeven      float64 // exit price at which net P&L is zero
	GrossPnL       float64
	NetPnL         float64
}

// Model prices trades against a fixed fee schedule.
type Model struct {
	p Params
}

func New(p Params) Model {
	return Model{p: p}
}

// PriceTrade computes the full cost breakdown and net result for a round
// trip of the given share count. Commission and tax are rounded to whole
// NT$ per leg, the way the broker bills them.
func (m Model) PriceTrade(entry, exit float64, shares int64, intraday bool) (Breakdown, error) {
	if shares <= 0 {
		return Breakdown{}, fmt.Errorf("%w: shares %d", ErrInvalidInput, shares)
	}
	if !validPrice(entry) {
		return Breakdown{}, fmt.Errorf("%w: entry price %v", ErrInvalidInput, entry)
	}
	if !validPrice(exit) {
		return Breakdown{}, fmt.Errorf("%w: exit price %v", ErrInvalidInput, exit)
	}

	qty := decimal.NewFromInt(shares)
	rate := decimal.NewFromFloat(m.p.CommissionRate).Mul(decimal.NewFromFloat(m.p.CommissionDiscount))
	minComm := decimal.NewFromFloat(m.p.MinCommission)

	buyComm := commissionLeg(decimal.NewFromFloat(entry), qty, rate, minComm)
	sellComm := commissionLeg(decimal.NewFromFloat(exit), qty, rate, minComm)

	taxRate := m.p.TaxRateStandard
	if intraday {
		taxRate = m.p.TaxRateIntraday
	}
	tax := decimal.NewFromFloat(exit).Mul(qty).Mul(decimal.NewFromFloat(taxRate)).Round(0)

	slip := decimal.NewFromFloat(entry + exit).
		Mul(qty).
		Mul(decimal.NewFromFloat(m.p.SlippageBps)).
		Div(decimal.NewFromInt(10_000)).
		Round(0)

	total := buyComm.Add(sellComm).Add(tax).Add(slip)
	totalF := total.InexactFloat64()

	gross := (exit - entry) * float64(shares)

	return Breakdown{
		BuyCommission:  buyComm.InexactFloat64(),
		SellCommission: sellComm.InexactFloat64(),
		Commission:     buyComm.Add(sellComm).InexactFloat64(),
		Tax:            tax.InexactFloat64(),
		Slippage:       slip.InexactFloat64(),
		TotalCost:      totalF,
		Breakeven:      entry + totalF/float64(shares),
		GrossPnL:       gross,
		NetPnL:         gross - totalF,
	}, nil
}

// commissionLeg is round(px*qty*rate) with the per-leg minimum applied.
func commissionLeg(px, qty, rate, min decimal.Decimal) decimal.Decimal {
	comm := px.Mul(qty).Mul(rate).Round(0)
	if comm.LessThan(min) {
		return min
	}
	return comm
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
