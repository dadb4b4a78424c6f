// Package tax computes VAT and withholding tax breakdowns for a base
// amount. All arithmetic is decimal; amounts are rounded to 2 places
// at computation time and never recomputed from floats downstream.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal"
)

// WHT categories used on withholding certificates.
const (
	WHTTypeService     = "service"
	WHTTypeRent        = "rent"
	WHTTypeTransport   = "transport"
	WHTTypeAdvertising = "advertising"
	WHTTypeOther       = "other"
)

var whtTypes = map[string]bool{
	WHTTypeService:     true,
	WHTTypeRent:        true,
	WHTTypeTransport:   true,
	WHTTypeAdvertising: true,
	WHTTypeOther:       true,
}

func ValidWHTType(t string) bool {
	return whtTypes[t]
}

var oneHundred = decimal.NewFromInt(100)

// Breakdown is the derived tax view of a transaction. NetAmount is the
// cash that changes hands: amount plus VAT minus what was withheld.
type Breakdown struct {
	VATAmount decimal.Decimal
	WHTAmount decimal.Decimal
	NetAmount decimal.Decimal
}

// Compute derives VAT, WHT and net amounts from a base amount and
// percentage rates. The same arithmetic serves both directions; on the
// expense side net is cash paid out, on the income side cash received.
func Compute(amount, vatRate, whtRate decimal.Decimal) (Breakdown, error) {
	if err := validate(amount, vatRate, whtRate); err != nil {
		return Breakdown{}, err
	}

	vatAmount := amount.Mul(vatRate).Div(oneHundred).Round(2)
	whtAmount := amount.Mul(whtRate).Div(oneHundred).Round(2)

	return Breakdown{
		VATAmount: vatAmount,
		WHTAmount: whtAmount,
		NetAmount: amount.Add(vatAmount).Sub(whtAmount),
	}, nil
}

func validate(amount, vatRate, whtRate decimal.Decimal) error {
	if amount.IsNegative() {
		return internal.NewValidationFieldError("amount", "amount must not be negative", internal.ErrCodeInvalidTaxInput)
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(oneHundred) {
		return internal.NewValidationFieldError("vat_rate", "vat rate must be between 0 and 100", internal.ErrCodeInvalidTaxInput)
	}
	if whtRate.IsNegative() || whtRate.GreaterThan(oneHundred) {
		return internal.NewValidationFieldError("wht_rate", "wht rate must be between 0 and 100", internal.ErrCodeInvalidTaxInput)
	}
	return nil
}
