// Package money holds the pure arithmetic behind sale totals and till
// reconciliation. Every stored amount is a decimal rounded to cents; floats are
// never used for the final value.
package money

import (
	"naxospos/internal/apierror"

	"github.com/shopspring/decimal"
)

// Cents is the scale of every stored monetary value.
const Cents = 2

// QuantityPlaces is the scale of sale item quantities.
const QuantityPlaces = 3

// Totals is the header arithmetic of a sale. Tax is always zero for now;
// prices are not tax-inclusive.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}

// LineTotal returns round(quantity × unitPrice, 2).
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice))
}

// Subtotal sums already-rounded line totals.
func Subtotal(lines []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l)
	}
	return Round(sum)
}

// Tax is the tax owed on a subtotal.
func Tax(_ decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// Compute derives the sale header totals from its line totals.
func Compute(lines []decimal.Decimal) Totals {
	sub := Subtotal(lines)
	tax := Tax(sub)
	return Totals{Subtotal: sub, Tax: tax, Total: sub.Add(tax)}
}

// SumPayments adds tendered amounts, each rounded to cents first.
func SumPayments(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(Round(a))
	}
	return sum
}

// ValidatePayments requires the tendered sum to equal totalDue to the cent.
// There is no tolerance window and no change is given.
func ValidatePayments(totalDue decimal.Decimal, amounts []decimal.Decimal) error {
	expected := Round(totalDue)
	actual := SumPayments(amounts)
	if !expected.Equal(actual) {
		return apierror.PaymentMismatch(expected, actual)
	}
	return nil
}

// Difference is counted cash minus what the drawer should hold.
// Negative means shortage, positive means overage.
func Difference(counted, openingFloat, totalCash decimal.Decimal) decimal.Decimal {
	return Round(counted.Sub(openingFloat.Add(totalCash)))
}

// FormatSigned renders d as +$X.XX or -$X.XX. Zero is rendered as +$0.00.
func FormatSigned(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(Cents)
	}
	return "+$" + d.StringFixed(Cents)
}

// HasMaxPlaces reports whether d has at most places decimal digits.
func HasMaxPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
