// Package core holds the domain types shared by the calendar, classifier
// and budget packages.
//
// This file contains the decimal helpers used for monetary amounts.
package core

import (
	"github.com/shopspring/decimal"
)

// SumAmounts adds up the amounts of the given transactions. The sum of an
// empty slice is zero.
func SumAmounts(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

// FormatAmount renders an amount with two decimal places, the format used
// whenever a summary leaves the process.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ClampNonNegative returns d, or zero when d is negative.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
