package market

import "math"

// TickSize returns the minimum price increment for a TWSE/TPEX equity at the
// given price level.
func TickSize(price float64) float64 {
	switch {
	case price < 10:
		return 0.01
	case price < 50:
		return 0.05
	case price < 100:
		return 0.10
	case price < 500:
		return 0.50
	case price < 1000:
		return 1.00
	default:
		return 5.00
	}
}

// RoundToTick rounds a price to the nearest valid tick for its price level.
func RoundToTick(price float64) float64 {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return price
	}
	tick := TickSize(price)
	rounded := math.Round(price/tick) * tick
	// Fixed-point snap kills the float residue from the division above.
	return math.Round(rounded*100) / 100
}
