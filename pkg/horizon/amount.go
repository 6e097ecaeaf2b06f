package horizon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// amountPrecision is the number of decimal places amounts are reported with.
const amountPrecision = 7

// ParseAmount parses a decimal amount string such as "100.0000000".
func ParseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %w", ErrInvalidAmount, value, err)
	}

	if amount.Exponent() < -amountPrecision {
		return decimal.Zero, fmt.Errorf("%w %q: more than %d decimal places", ErrInvalidAmount, value, amountPrecision)
	}

	return amount, nil
}

// FormatAmount renders an amount with the service's fixed precision.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(amountPrecision)
}

// Amount parses the balance as a decimal.
func (b Balance) Amount() (decimal.Decimal, error) {
	return ParseAmount(b.Balance)
}

// AmountDecimal parses the offer amount as a decimal.
func (o Offer) AmountDecimal() (decimal.Decimal, error) {
	return ParseAmount(o.Amount)
}

// Ratio returns the price as a decimal, or zero when the denominator is zero.
func (p Price) Ratio() decimal.Decimal {
	if p.D == 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(int64(p.N)).Div(decimal.NewFromInt(int64(p.D)))
}
