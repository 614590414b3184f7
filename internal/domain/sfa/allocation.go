package sfa

import (
	"context"
	"fmt"

	"github.com/erp/sfa/internal/domain/shared/strategy"
	"github.com/erp/sfa/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocationValidation is the outcome of checking a payment's team split
type AllocationValidation struct {
	Valid bool
	Error string
}

// CreateTemplate returns one zero allocation per sales item, copying the
// team and item references
func CreateTemplate(items []SalesItem) []TeamAllocation {
	allocs := make([]TeamAllocation, len(items))
	for i, item := range items {
		allocs[i] = TeamAllocation{
			TeamID:   item.TeamID,
			TeamName: item.TeamName,
			ItemID:   item.ItemID,
			ItemName: item.ItemName,
		}
	}
	return allocs
}

// Allocate splits paymentAmount across the sales items with the given
// strategy, weighting each item by its declared amount. A zero amount or an
// empty item list yields the zero template.
func Allocate(ctx context.Context, splitter strategy.AmountSplitStrategy, paymentAmount int64, items []SalesItem) ([]TeamAllocation, error) {
	allocs := CreateTemplate(items)
	if paymentAmount == 0 || len(items) == 0 {
		return allocs, nil
	}

	shares := make([]strategy.Share, len(items))
	for i, item := range items {
		shares[i] = strategy.Share{
			Key:    item.TeamID,
			Weight: decimal.NewFromInt(item.AmountValue()),
		}
	}

	result, err := splitter.Split(ctx, decimal.NewFromInt(paymentAmount), shares)
	if err != nil {
		return nil, fmt.Errorf("split payment amount: %w", err)
	}
	for i := range allocs {
		allocs[i].AllocatedAmount = result.Amounts[i].IntPart()
	}
	return allocs, nil
}

// DistributeProfit spreads profitAmount over the allocations in proportion
// to their allocated amounts. The allocations are updated in place.
func DistributeProfit(ctx context.Context, splitter strategy.AmountSplitStrategy, allocs []TeamAllocation, profitAmount int64) error {
	if len(allocs) == 0 {
		return nil
	}
	if profitAmount <= 0 {
		for i := range allocs {
			allocs[i].AllocatedProfitAmount = 0
		}
		return nil
	}

	shares := make([]strategy.Share, len(allocs))
	for i, a := range allocs {
		weight := a.AllocatedAmount
		if weight < 0 {
			weight = 0
		}
		shares[i] = strategy.Share{Key: a.TeamID, Weight: decimal.NewFromInt(weight)}
	}

	result, err := splitter.Split(ctx, decimal.NewFromInt(profitAmount), shares)
	if err != nil {
		return fmt.Errorf("split profit amount: %w", err)
	}
	for i := range allocs {
		allocs[i].AllocatedProfitAmount = result.Amounts[i].IntPart()
	}
	return nil
}

// ValidateAllocations checks that allocs is non-empty, has no negative
// amounts, and sums to paymentAmount
func ValidateAllocations(allocs []TeamAllocation, paymentAmount int64) AllocationValidation {
	if len(allocs) == 0 {
		return AllocationValidation{Error: "At least one team allocation is required"}
	}

	var total int64
	for i, a := range allocs {
		if a.AllocatedAmount < 0 {
			return AllocationValidation{
				Error: fmt.Sprintf("Allocation %d (%s) must not be negative", i+1, a.TeamName),
			}
		}
		total += a.AllocatedAmount
	}

	if total != paymentAmount {
		return AllocationValidation{
			Error: fmt.Sprintf("Allocated total %s does not match payment amount %s",
				displayAmount(total), displayAmount(paymentAmount)),
		}
	}
	return AllocationValidation{Valid: true}
}

func displayAmount(n int64) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + valueobject.FormatAmount(-n)
	}
	return valueobject.FormatAmount(n)
}
