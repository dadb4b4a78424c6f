package tax_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/tax"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	Expect(err).ToNot(HaveOccurred())
	return v
}

var _ = Describe("Compute", func() {
	Context("with standard Thai VAT and service WHT rates", func() {
		It("should derive vat, wht and net from the base amount", func() {
			breakdown, err := tax.Compute(d("10000"), d("7"), d("3"))

			Expect(err).ToNot(HaveOccurred())
			Expect(breakdown.VATAmount.Equal(d("700"))).To(BeTrue(), "vat: %s", breakdown.VATAmount)
			Expect(breakdown.WHTAmount.Equal(d("300"))).To(BeTrue(), "wht: %s", breakdown.WHTAmount)
			Expect(breakdown.NetAmount.Equal(d("10400"))).To(BeTrue(), "net: %s", breakdown.NetAmount)
		})
	})

	Context("with no taxes applied", func() {
		It("should return the base amount unchanged as net", func() {
			breakdown, err := tax.Compute(d("10000"), d("0"), d("0"))

			Expect(err).ToNot(HaveOccurred())
			Expect(breakdown.VATAmount.IsZero()).To(BeTrue())
			Expect(breakdown.WHTAmount.IsZero()).To(BeTrue())
			Expect(breakdown.NetAmount.Equal(d("10000"))).To(BeTrue())
		})
	})

	Context("with fractional amounts", func() {
		It("should round tax amounts to 2 decimal places", func() {
			breakdown, err := tax.Compute(d("333.33"), d("7"), d("3"))

			Expect(err).ToNot(HaveOccurred())
			// 333.33 * 0.07 = 23.3331 -> 23.33
			Expect(breakdown.VATAmount.Equal(d("23.33"))).To(BeTrue(), "vat: %s", breakdown.VATAmount)
			// 333.33 * 0.03 = 9.9999 -> 10.00
			Expect(breakdown.WHTAmount.Equal(d("10"))).To(BeTrue(), "wht: %s", breakdown.WHTAmount)
			Expect(breakdown.NetAmount.Equal(d("346.66"))).To(BeTrue(), "net: %s", breakdown.NetAmount)
		})

		It("should keep net consistent with its rounded parts", func() {
			breakdown, err := tax.Compute(d("1234.56"), d("7"), d("5"))

			Expect(err).ToNot(HaveOccurred())
			expected := d("1234.56").Add(breakdown.VATAmount).Sub(breakdown.WHTAmount)
			Expect(breakdown.NetAmount.Equal(expected)).To(BeTrue())
		})
	})

	Context("with a zero amount", func() {
		It("should return zeros without error", func() {
			breakdown, err := tax.Compute(d("0"), d("7"), d("3"))

			Expect(err).ToNot(HaveOccurred())
			Expect(breakdown.NetAmount.IsZero()).To(BeTrue())
		})
	})

	Context("with invalid inputs", func() {
		It("should reject a negative amount and name the field", func() {
			_, err := tax.Compute(d("-1"), d("7"), d("3"))

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTaxInput))
			Expect(appErr.Details).To(Equal(internal.ValidationError{
				Field:   "amount",
				Message: "amount must not be negative",
				Code:    string(internal.ErrCodeInvalidTaxInput),
			}))
		})

		It("should reject a vat rate above 100", func() {
			_, err := tax.Compute(d("100"), d("101"), d("0"))

			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Details.(internal.ValidationError).Field).To(Equal("vat_rate"))
		})

		It("should reject a negative wht rate", func() {
			_, err := tax.Compute(d("100"), d("7"), d("-3"))

			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Details.(internal.ValidationError).Field).To(Equal("wht_rate"))
		})
	})
})

var _ = Describe("ValidWHTType", func() {
	It("should accept the certificate categories", func() {
		for _, t := range []string{tax.WHTTypeService, tax.WHTTypeRent, tax.WHTTypeTransport, tax.WHTTypeAdvertising, tax.WHTTypeOther} {
			Expect(tax.ValidWHTType(t)).To(BeTrue(), t)
		}
	})

	It("should reject unknown categories", func() {
		Expect(tax.ValidWHTType("dividend")).To(BeFalse())
		Expect(tax.ValidWHTType("")).To(BeFalse())
	})
})
