package finance

import "github.com/shopspring/decimal"

// RoundCents rounds a currency amount to two decimal places using half-up
// rounding at the cent boundary. Going through decimal avoids the float64
// representation errors of the multiply-round-divide trick (e.g.
// 4.9975*100 == 499.74999...).
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
