package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/strategy"
)

// StrategyRegistry manages strategy registrations
type StrategyRegistry struct {
	mu              sync.RWMutex
	splitStrategies map[string]strategy.AmountSplitStrategy
	defaults        map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		splitStrategies: make(map[string]strategy.AmountSplitStrategy),
		defaults:        make(map[strategy.StrategyType]string),
	}
}

// RegisterSplitStrategy registers an amount split strategy
func (r *StrategyRegistry) RegisterSplitStrategy(s strategy.AmountSplitStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.splitStrategies[name]; exists {
		return fmt.Errorf("%w: split strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.splitStrategies[name] = s
	return nil
}

// GetSplitStrategy returns a split strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetSplitStrategy(name string) (strategy.AmountSplitStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeAllocation]
		if name == "" {
			return nil, fmt.Errorf("%w: no default split strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.splitStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: split strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetSplitStrategyOrDefault returns a split strategy by name, or the default if not found
func (r *StrategyRegistry) GetSplitStrategyOrDefault(name string) strategy.AmountSplitStrategy {
	s, err := r.GetSplitStrategy(name)
	if err != nil {
		s, _ = r.GetSplitStrategy("")
	}
	return s
}

// ListSplitStrategies returns all registered split strategy names
func (r *StrategyRegistry) ListSplitStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.splitStrategies))
	for name := range r.splitStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterSplitStrategy removes a split strategy
func (r *StrategyRegistry) UnregisterSplitStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.splitStrategies[name]; !exists {
		return fmt.Errorf("%w: split strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.splitStrategies, name)

	// Clear default if it was this strategy
	if r.defaults[strategy.StrategyTypeAllocation] == name {
		delete(r.defaults, strategy.StrategyTypeAllocation)
	}
	return nil
}

// SetDefault sets the default strategy for a strategy type
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRegisteredLocked(strategyType, name) {
		return fmt.Errorf("%w: strategy '%s' of type '%s' not found", shared.ErrNotFound, name, strategyType)
	}

	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a strategy type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}

// IsRegistered returns true if a strategy with the given name is registered for the type
func (r *StrategyRegistry) IsRegistered(strategyType strategy.StrategyType, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRegisteredLocked(strategyType, name)
}

// isRegisteredLocked checks registration without locking (caller must hold lock)
func (r *StrategyRegistry) isRegisteredLocked(strategyType strategy.StrategyType, name string) bool {
	switch strategyType {
	case strategy.StrategyTypeAllocation:
		_, exists := r.splitStrategies[name]
		return exists
	default:
		return false
	}
}
