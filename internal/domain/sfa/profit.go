package sfa

import (
	"fmt"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProfitResult is the derived profit amount of a payment.
// When the exact value was not an integer it is rounded and Corrected is
// set; Original keeps the exact value for correction logging.
type ProfitResult struct {
	Amount    int64
	Original  decimal.Decimal
	Corrected bool
}

// CalculateProfit derives the profit amount of a payment.
// With isProfit the margin value is a flat amount; otherwise it is a
// percentage of amount. An empty margin value yields zero.
func CalculateProfit(amount int64, marginProfitValue string, isProfit bool) (ProfitResult, error) {
	value, err := valueobject.ParseDecimal(marginProfitValue)
	if err != nil {
		return ProfitResult{}, shared.NewDomainError("INVALID_MARGIN",
			fmt.Sprintf("Margin/profit value %q is not a number", marginProfitValue))
	}

	exact := value
	if !isProfit {
		exact = decimal.NewFromInt(amount).Mul(value).Div(hundred)
	}

	rounded := exact.Round(0)
	return ProfitResult{
		Amount:    rounded.IntPart(),
		Original:  exact,
		Corrected: !exact.Equal(rounded),
	}, nil
}

// CheckProfitRule reports why a margin configuration is inconsistent with
// amount, or "" when it is consistent. A flat profit must not exceed the
// amount; a percentage must lie within [0,100].
func CheckProfitRule(amount int64, marginProfitValue string, isProfit bool) string {
	value, err := valueobject.ParseDecimal(marginProfitValue)
	if err != nil {
		return "Margin/profit value must be a number"
	}
	if value.IsNegative() {
		return "Margin/profit value must not be negative"
	}
	if isProfit {
		if value.GreaterThan(decimal.NewFromInt(amount)) {
			return "Profit amount must not exceed the payment amount"
		}
		return ""
	}
	if value.GreaterThan(hundred) {
		return "Margin percentage must be between 0 and 100"
	}
	return ""
}
