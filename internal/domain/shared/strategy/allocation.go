package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

// Share is one weighted slot of an amount split, e.g. a sales item
type Share struct {
	Key    string
	Weight decimal.Decimal
}

// SplitResult contains the result of splitting an amount across shares.
// Amounts is index-aligned with the input shares.
type SplitResult struct {
	Amounts []decimal.Decimal
	Total   decimal.Decimal
	// RemainderIndex is the share that absorbed the rounding remainder, -1 if none
	RemainderIndex int
}

// AmountSplitStrategy defines the interface for dividing an integer amount
// across shares without losing or creating units
type AmountSplitStrategy interface {
	Strategy
	// Split divides amount across shares. The returned amounts are integers
	// and always sum to amount exactly.
	Split(ctx context.Context, amount decimal.Decimal, shares []Share) (SplitResult, error)
}
