package allocation

import (
	"context"
	"testing"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shares(weights ...int64) []strategy.Share {
	out := make([]strategy.Share, len(weights))
	for i, w := range weights {
		out[i] = strategy.Share{Key: string(rune('A' + i)), Weight: decimal.NewFromInt(w)}
	}
	return out
}

func ints(amounts []decimal.Decimal) []int64 {
	out := make([]int64, len(amounts))
	for i, a := range amounts {
		out[i] = a.IntPart()
	}
	return out
}

func sum(amounts []decimal.Decimal) int64 {
	var total int64
	for _, a := range amounts {
		total += a.IntPart()
	}
	return total
}

func TestRatioSplitStrategy_Metadata(t *testing.T) {
	s := NewRatioSplitStrategy()
	assert.Equal(t, "ratio", s.Name())
	assert.Equal(t, strategy.StrategyTypeAllocation, s.Type())
	assert.NotEmpty(t, s.Description())
}

func TestRatioSplitStrategy_Split(t *testing.T) {
	ctx := context.Background()
	s := NewRatioSplitStrategy()

	tests := []struct {
		name    string
		amount  int64
		weights []int64
		want    []int64
	}{
		{"exact proportional", 1000000, []int64{700000, 300000}, []int64{700000, 300000}},
		{"small amount", 100, []int64{700000, 300000}, []int64{70, 30}},
		{"thirds remainder on last", 100, []int64{1, 1, 1}, []int64{33, 33, 34}},
		{"rounding up drifts last down", 10, []int64{1, 1, 1}, []int64{3, 3, 4}},
		{"half rounds away from zero", 5, []int64{1, 1}, []int64{3, 2}},
		{"single share takes all", 12345, []int64{9}, []int64{12345}},
		{"zero weight share", 1000, []int64{0, 1}, []int64{0, 1000}},
		{"zero amount", 0, []int64{700000, 300000}, []int64{0, 0}},
		{"zero weights", 1000, []int64{0, 0, 0}, []int64{0, 0, 0}},
		{"zero weight last share absorbs rounding", 1, []int64{1, 1, 0}, []int64{1, 1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Split(ctx, decimal.NewFromInt(tt.amount), shares(tt.weights...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ints(result.Amounts))
			if tt.amount > 0 && sum(result.Amounts) > 0 {
				assert.Equal(t, tt.amount, sum(result.Amounts))
				assert.Equal(t, len(tt.weights)-1, result.RemainderIndex)
			}
		})
	}
}

func TestRatioSplitStrategy_TotalIsExact(t *testing.T) {
	ctx := context.Background()
	s := NewRatioSplitStrategy()
	weightSets := [][]int64{{3, 7}, {1, 2, 4}, {333, 333, 334}, {17, 29, 54}, {999999, 1, 1}}
	for _, weights := range weightSets {
		for _, amount := range []int64{1, 7, 99, 100, 101, 1000003, 987654321} {
			result, err := s.Split(ctx, decimal.NewFromInt(amount), shares(weights...))
			require.NoError(t, err)
			assert.Equal(t, amount, sum(result.Amounts), "amount %d weights %v", amount, weights)
		}
	}
}

func TestEqualSplitStrategy_Split(t *testing.T) {
	ctx := context.Background()
	s := NewEqualSplitStrategy()

	tests := []struct {
		name   string
		amount int64
		n      int
		want   []int64
	}{
		{"remainder to first", 100, 3, []int64{34, 33, 33}},
		{"even", 90, 3, []int64{30, 30, 30}},
		{"two shares odd", 101, 2, []int64{51, 50}},
		{"amount smaller than n", 2, 3, []int64{2, 0, 0}},
		{"zero amount", 0, 2, []int64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := make([]int64, tt.n)
			result, err := s.Split(ctx, decimal.NewFromInt(tt.amount), shares(weights...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ints(result.Amounts))
			assert.Equal(t, tt.amount, sum(result.Amounts))
		})
	}
}

func TestSplit_InvalidInput(t *testing.T) {
	ctx := context.Background()
	for _, s := range []strategy.AmountSplitStrategy{NewRatioSplitStrategy(), NewEqualSplitStrategy()} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Split(ctx, decimal.NewFromInt(100), nil)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)

			_, err = s.Split(ctx, decimal.NewFromFloat(10.5), shares(1, 1))
			assert.ErrorIs(t, err, shared.ErrInvalidInput)

			_, err = s.Split(ctx, decimal.NewFromInt(-1), shares(1, 1))
			assert.ErrorIs(t, err, shared.ErrInvalidInput)

			_, err = s.Split(ctx, decimal.NewFromInt(10), shares(1, -1))
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}
