package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one income-tax band. A zero Ceiling marks the open-ended
// top band. The band rate applies to the entire gross salary, not to
// the excess over the previous ceiling.
type Bracket struct {
	Ceiling decimal.Decimal `json:"ceiling"`
	Rate    decimal.Decimal `json:"rate"`
}

// Rates holds every percentage the calculator applies to gross salary.
type Rates struct {
	AFP decimal.Decimal `json:"afp"`
	ARS decimal.Decimal `json:"ars"`
	ISR []Bracket       `json:"isr"`
}

// DefaultRates returns AFP 2.87%, ARS 3.04%, and the three ISR bands:
// 0% up to 20,000, 5% up to 40,000, 10% above.
func DefaultRates() Rates {
	return Rates{
		AFP: decimal.RequireFromString("0.0287"),
		ARS: decimal.RequireFromString("0.0304"),
		ISR: []Bracket{
			{Ceiling: decimal.RequireFromString("20000"), Rate: decimal.Zero},
			{Ceiling: decimal.RequireFromString("40000"), Rate: decimal.RequireFromString("0.05")},
			{Rate: decimal.RequireFromString("0.10")},
		},
	}
}

// RatesFromStrings starts from DefaultRates and overrides AFP and ARS
// from configuration values. Empty strings keep the defaults.
func RatesFromStrings(afp, ars string) (Rates, error) {
	rates := DefaultRates()
	if afp != "" {
		value, err := decimal.NewFromString(afp)
		if err != nil {
			return Rates{}, fmt.Errorf("invalid AFP rate %q: %w", afp, err)
		}
		rates.AFP = value
	}
	if ars != "" {
		value, err := decimal.NewFromString(ars)
		if err != nil {
			return Rates{}, fmt.Errorf("invalid ARS rate %q: %w", ars, err)
		}
		rates.ARS = value
	}
	return rates, nil
}
