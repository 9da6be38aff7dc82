package domain

import "github.com/shopspring/decimal"

// Deduction rates of the payout pipeline. The platform pays sellers out of
// its commission, net of acquiring, bank transfer, personal income tax and
// social fund contributions modelled on the commission base.
var (
	acquiringFeeRate = decimal.NewFromFloat(0.014)
	bankFeeRate      = decimal.NewFromFloat(0.10)
	personalTaxRate  = decimal.NewFromFloat(0.13)  // NDFL
	pensionFundRate  = decimal.NewFromFloat(0.22)  // PFR
	healthFundRate   = decimal.NewFromFloat(0.051) // FOMS

	// Individual entrepreneurs are paid a flat share of the commission.
	individualPayoutRate = decimal.NewFromFloat(0.20)

	oneHundred = decimal.NewFromInt(100)
	two        = decimal.NewFromInt(2)
)

// CalculateSellerCash converts a paid order amount and the organization's
// commission percent into the seller payout ("cash"), rounded to 2 decimals
// with banker's rounding.
//
// Out-of-range percentages are not validated: the function is pure
// arithmetic and commission terms are vetted at organization onboarding.
func CalculateSellerCash(orderCost, commissionPercent decimal.Decimal, sellerIsIndividual bool) decimal.Decimal {
	commission := orderCost.Mul(commissionPercent).Div(oneHundred)

	if sellerIsIndividual {
		return commission.Mul(individualPayoutRate).RoundBank(2)
	}

	// Acquiring fee comes off the commission first, then half of the rest
	// covers the labor cost (FOT) budget the payout is drawn from.
	base := commission.Sub(commission.Mul(acquiringFeeRate)).Div(two)

	// Gross-up factor turning a net sum into one that includes NDFL:
	// 0.13/0.87 ≈ 14.94%. Fund contributions compound against it because
	// they are charged on the grossed-up amount.
	taxMarkup := personalTaxRate.Div(decimal.NewFromInt(1).Sub(personalTaxRate))
	denominator := decimal.NewFromInt(1).
		Add(bankFeeRate).
		Add(pensionFundRate.Add(healthFundRate).Mul(decimal.NewFromInt(1).Add(taxMarkup)))

	cashWithTax := base.Div(denominator)

	withheld := roundTaxKopeks(cashWithTax.Mul(personalTaxRate))

	return cashWithTax.Sub(withheld).RoundBank(2)
}

// roundTaxKopeks applies the fiscal rounding rule for withheld tax: a
// fractional kopek below 0.5 is dropped, otherwise the amount is raised to
// the next kopek.
func roundTaxKopeks(tax decimal.Decimal) decimal.Decimal {
	kopeks := tax.Mul(oneHundred)
	frac := kopeks.Sub(kopeks.Floor())

	if frac.LessThan(decimal.NewFromFloat(0.5)) {
		kopeks = kopeks.Floor()
	} else {
		kopeks = kopeks.Ceil()
	}

	return kopeks.Div(oneHundred)
}

// AddPersonalTax inverts a net sum into the gross amount including the
// rounded NDFL component.
func AddPersonalTax(net decimal.Decimal) decimal.Decimal {
	gross := net.Div(decimal.NewFromInt(1).Sub(personalTaxRate)).RoundBank(2)
	tax := gross.Sub(net).RoundBank(2)

	return net.Add(tax)
}
