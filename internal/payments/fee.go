package payments

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// ApplicationFeeAmount converts a percent of unitAmount into a fixed fee in
// the same minor currency unit, rounding half up.
func ApplicationFeeAmount(unitAmount int64, percent int) int64 {
	if unitAmount <= 0 || percent <= 0 {
		return 0
	}
	return (unitAmount*int64(percent) + percentDivisor/2) / percentDivisor
}

// ValidateFeePercent rejects percents outside 0..100
func ValidateFeePercent(percent int) error {
	if percent < 0 || percent > percentDivisor {
		return fmt.Errorf("%s: %d", ErrMsgInvalidFeePercent, percent)
	}
	return nil
}

// FormatMinorUnits renders an amount in minor units using the currency's
// standard number of decimals, e.g. 150 usd -> "USD 1.50", 150 jpy -> "JPY 150".
// Unknown currency codes are rendered as the raw amount.
func FormatMinorUnits(amount int64, currencyCode string) string {
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return fmt.Sprintf("%d %s", amount, strings.ToUpper(currencyCode))
	}

	scale, _ := currency.Standard.Rounding(unit)
	divisor := int64(1)
	for i := 0; i < scale; i++ {
		divisor *= 10
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if scale == 0 {
		return fmt.Sprintf("%s %s%d", unit, sign, amount)
	}
	return fmt.Sprintf("%s %s%d.%0*d", unit, sign, amount/divisor, scale, amount%divisor)
}
