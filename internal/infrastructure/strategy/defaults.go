package strategy

import (
	"github.com/erp/sfa/internal/domain/shared/strategy"
	"github.com/erp/sfa/internal/infrastructure/strategy/allocation"
)

// NewRegistryWithDefaults creates a new registry with the ratio and equal
// split strategies registered. Ratio is the default.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	ratio := allocation.NewRatioSplitStrategy()
	if err := r.RegisterSplitStrategy(ratio); err != nil {
		return nil, err
	}

	equal := allocation.NewEqualSplitStrategy()
	if err := r.RegisterSplitStrategy(equal); err != nil {
		return nil, err
	}

	if err := r.SetDefault(strategy.StrategyTypeAllocation, ratio.Name()); err != nil {
		return nil, err
	}

	return r, nil
}
