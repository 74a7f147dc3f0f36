// Package cost derives billed cost from a project rate and a logged duration.
//
// Rounding is half away from zero to two decimal places, applied once to the
// final amount.
package cost

import "github.com/shopspring/decimal"

var sixty = decimal.NewFromInt(60)

// Cost returns round(rate * (hours + minutes/60), 2).
func Cost(rate decimal.Decimal, hours, minutes uint8) decimal.Decimal {
	total := decimal.NewFromInt(int64(hours)*60 + int64(minutes))
	return rate.Mul(total).Div(sixty).Round(2)
}
