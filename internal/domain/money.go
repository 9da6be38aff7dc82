package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// RUB is the settlement currency of the platform; per-item prices keep the
// full Money shape so multi-currency sellers can be onboarded later.
var RUB = currency.MustParseISO("RUB")

func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: RUB}
}

func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
