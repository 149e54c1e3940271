package utils

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

var xofPrinter = message.NewPrinter(language.French)

// FormatXOF renders an amount for display as West African CFA francs:
// French digit grouping, zero decimal places. Display-only; ledger math
// never goes through here.
func FormatXOF(amount float64) string {
	return xofPrinter.Sprintf("%v F CFA", number.Decimal(math.Round(amount), number.MaxFractionDigits(0)))
}
