package allocation

import (
	"context"
	"fmt"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// RatioStrategyName is the registry name of the ratio split
const RatioStrategyName = "ratio"

// RatioSplitStrategy splits an amount proportionally to share weights.
// Every share but the last is rounded half away from zero; the last share
// receives whatever is left so the total is exact.
type RatioSplitStrategy struct {
	strategy.BaseStrategy
}

// NewRatioSplitStrategy creates a new ratio split strategy
func NewRatioSplitStrategy() *RatioSplitStrategy {
	return &RatioSplitStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			RatioStrategyName,
			strategy.StrategyTypeAllocation,
			"Split proportionally to declared amounts, remainder to the last share",
		),
	}
}

// Split divides amount across shares by weight
func (s *RatioSplitStrategy) Split(
	ctx context.Context,
	amount decimal.Decimal,
	shares []strategy.Share,
) (strategy.SplitResult, error) {
	if err := checkSplitInput(amount, shares); err != nil {
		return strategy.SplitResult{}, err
	}

	weightSum := decimal.Zero
	for _, share := range shares {
		weightSum = weightSum.Add(share.Weight)
	}

	// Nothing to distribute, or no basis to distribute on
	if amount.IsZero() || weightSum.IsZero() {
		return zeroResult(len(shares)), nil
	}

	amounts := make([]decimal.Decimal, len(shares))
	allocated := decimal.Zero
	last := len(shares) - 1
	for i, share := range shares[:last] {
		part := amount.Mul(share.Weight).Div(weightSum).Round(0)
		amounts[i] = part
		allocated = allocated.Add(part)
	}
	amounts[last] = amount.Sub(allocated)

	return strategy.SplitResult{
		Amounts:        amounts,
		Total:          amount,
		RemainderIndex: last,
	}, nil
}

func checkSplitInput(amount decimal.Decimal, shares []strategy.Share) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: at least one share is required", shared.ErrInvalidInput)
	}
	if !amount.IsInteger() || amount.IsNegative() {
		return fmt.Errorf("%w: amount must be a non-negative integer, got %s", shared.ErrInvalidInput, amount)
	}
	for _, share := range shares {
		if share.Weight.IsNegative() {
			return fmt.Errorf("%w: share %q has negative weight", shared.ErrInvalidInput, share.Key)
		}
	}
	return nil
}

func zeroResult(n int) strategy.SplitResult {
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = decimal.Zero
	}
	return strategy.SplitResult{
		Amounts:        amounts,
		Total:          decimal.Zero,
		RemainderIndex: -1,
	}
}
