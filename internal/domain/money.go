package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as int64 cents everywhere in the ledger to avoid
// floating point errors. Decimal conversion exists only for display.

// CentsToDecimal converts int64 cents to a shopspring/decimal.Decimal.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// FormatCents renders cents as a fixed two-decimal string, e.g. 1250 -> "12.50".
func FormatCents(cents int64) string {
	return CentsToDecimal(cents).StringFixed(2)
}

// ValidateAmount rejects non-positive money amounts at the aggregate boundary.
func ValidateAmount(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("invalid amount: %d", cents)
	}
	return nil
}
