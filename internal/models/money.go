package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user-entered monetary input into a decimal.
// Locale-specific decimal commas ("150,50") are normalised to dot-decimal
// before parsing. Unparseable input coerces to zero instead of failing:
// the backing sheet has always been hand-edited, and rendering a dashboard
// beats rejecting a whole table over one bad cell. Callers that need a
// positive amount must check the result themselves.
func ParseAmount(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if strings.Contains(cleaned, ",") && !strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		// "1,234.50" style thousand separators
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders a monetary value with two fractional digits, the
// precision the ledger table stores.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseCount converts a lesson-count cell into an integer, coercing
// unparseable values to zero like ParseAmount does.
func ParseCount(raw string) int {
	d := ParseAmount(raw)
	return int(d.IntPart())
}
