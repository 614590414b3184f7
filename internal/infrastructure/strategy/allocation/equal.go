package allocation

import (
	"context"

	"github.com/erp/sfa/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// EqualStrategyName is the registry name of the equal split
const EqualStrategyName = "equal"

// EqualSplitStrategy gives every share floor(amount/n) and adds the
// remainder to the first share. Weights are ignored.
type EqualSplitStrategy struct {
	strategy.BaseStrategy
}

// NewEqualSplitStrategy creates a new equal split strategy
func NewEqualSplitStrategy() *EqualSplitStrategy {
	return &EqualSplitStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			EqualStrategyName,
			strategy.StrategyTypeAllocation,
			"Split evenly, remainder to the first share",
		),
	}
}

// Split divides amount evenly across shares
func (s *EqualSplitStrategy) Split(
	ctx context.Context,
	amount decimal.Decimal,
	shares []strategy.Share,
) (strategy.SplitResult, error) {
	if err := checkSplitInput(amount, shares); err != nil {
		return strategy.SplitResult{}, err
	}
	if amount.IsZero() {
		return zeroResult(len(shares)), nil
	}

	n := decimal.NewFromInt(int64(len(shares)))
	perShare := amount.Div(n).Floor()
	remainder := amount.Sub(perShare.Mul(n))

	amounts := make([]decimal.Decimal, len(shares))
	for i := range amounts {
		amounts[i] = perShare
	}
	amounts[0] = amounts[0].Add(remainder)

	return strategy.SplitResult{
		Amounts:        amounts,
		Total:          amount,
		RemainderIndex: 0,
	}, nil
}
