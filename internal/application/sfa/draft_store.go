package sfa

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/strategy"
	"github.com/erp/sfa/internal/infrastructure/strategy/allocation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SplitStrategyProvider resolves amount split strategies by name.
// An empty name resolves to the default strategy.
type SplitStrategyProvider interface {
	GetSplitStrategy(name string) (strategy.AmountSplitStrategy, error)
}

// Draft store errors
var (
	ErrDraftLimit   = shared.NewDomainError("DRAFT_LIMIT", fmt.Sprintf("At most %d payments can be drafted at once", sfa.MaxDraftPayments))
	ErrDraftIndex   = shared.NewDomainError("INVALID_INDEX", "No draft payment at that position")
	ErrAllocIndex   = shared.NewDomainError("INVALID_INDEX", "No team allocation at that position")
	ErrNotMultiTeam = shared.NewDomainError("NOT_MULTI_TEAM", "Team allocation is only available in multi-team mode")
	ErrTooManyItems = shared.NewDomainError("SALES_ITEM_LIMIT", "Switch to single-team mode requires at most one sales item")
)

// DraftStore holds the record being edited, its committed payment list and
// a separate draft list. Every read returns a copy, so the draft and
// committed lists never share memory with each other or with callers.
// Each draft also has a key that stays fixed while other drafts are added
// or removed; keys[i] belongs to drafts[i].
type DraftStore struct {
	mu        sync.RWMutex
	record    *sfa.RevenueRecord
	drafts    []sfa.PaymentEntry
	keys      []uuid.UUID
	splitters SplitStrategyProvider
	logger    *zap.Logger
}

// NewDraftStore creates a store editing a copy of record
func NewDraftStore(record *sfa.RevenueRecord, splitters SplitStrategyProvider, logger *zap.Logger) *DraftStore {
	if record == nil {
		record = &sfa.RevenueRecord{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftStore{
		record:    record.Clone(),
		drafts:    []sfa.PaymentEntry{},
		keys:      []uuid.UUID{},
		splitters: splitters,
		logger:    logger,
	}
}

// Record returns a copy of the record with its committed payments
func (s *DraftStore) Record() *sfa.RevenueRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// RevenueID returns the id of the record being edited
func (s *DraftStore) RevenueID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.ID
}

// IsMultiTeam reports whether the record splits payments across teams
func (s *DraftStore) IsMultiTeam() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.IsMultiTeam
}

// Committed returns a copy of the committed payment list
func (s *DraftStore) Committed() []sfa.PaymentEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sfa.ClonePayments(s.record.Payments)
}

// Drafts returns a copy of the draft list
func (s *DraftStore) Drafts() []sfa.PaymentEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sfa.ClonePayments(s.drafts)
}

// snapshotDrafts returns a copy of the drafts together with their keys
func (s *DraftStore) snapshotDrafts() ([]sfa.PaymentEntry, []uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sfa.ClonePayments(s.drafts), append([]uuid.UUID(nil), s.keys...)
}

// DraftCount returns the number of drafts
func (s *DraftStore) DraftCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// SetMultiTeam switches between single and multi-team mode. Leaving
// multi-team mode requires at most one sales item.
func (s *DraftStore) SetMultiTeam(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !on && len(s.record.SalesItems) > 1 {
		return ErrTooManyItems
	}
	s.record.IsMultiTeam = on
	return s.rebuildAllocationsLocked(ctx)
}

// AddSalesItem appends a sales item, bounded by the team mode limit
func (s *DraftStore) AddSalesItem(ctx context.Context, item sfa.SalesItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record.AddSalesItem(item); err != nil {
		return err
	}
	return s.rebuildAllocationsLocked(ctx)
}

// UpdateSalesItem merges patch into the sales item at index
func (s *DraftStore) UpdateSalesItem(ctx context.Context, index int, patch sfa.SalesItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.record.SalesItems) {
		return shared.NewDomainError("INVALID_INDEX", fmt.Sprintf("No sales item at position %d", index+1))
	}
	patch.Apply(&s.record.SalesItems[index])
	return s.rebuildAllocationsLocked(ctx)
}

// RemoveSalesItem removes the sales item at index; later items shift down
func (s *DraftStore) RemoveSalesItem(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record.RemoveSalesItem(index); err != nil {
		return err
	}
	return s.rebuildAllocationsLocked(ctx)
}

// AddDraftPayment appends a zero-valued payment to the drafts and returns
// its index. With isSameBilling the revenue source is taken from customer.
func (s *DraftStore) AddDraftPayment(isSameBilling bool, customer *sfa.Customer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.drafts) >= sfa.MaxDraftPayments {
		return 0, ErrDraftLimit
	}

	entry := sfa.NewPaymentEntry(s.record.ID)
	entry.IsSameBilling = isSameBilling
	if isSameBilling && customer != nil {
		entry.RevenueSourceID = customer.ID
		entry.RevenueSourceName = customer.Name
	}
	entry.TeamAllocations = sfa.CreateTemplate(s.record.SalesItems)
	if !s.record.IsMultiTeam && len(entry.TeamAllocations) > 1 {
		entry.TeamAllocations = entry.TeamAllocations[:1]
	}

	s.drafts = append(s.drafts, entry)
	s.keys = append(s.keys, uuid.New())
	return len(s.drafts) - 1, nil
}

// UpdateDraftPayment merges patch into the draft at index. Derived fields
// are recomputed in the same call: the profit amount when an input of it
// changes, and in single-team mode the sole allocation follows the amount.
func (s *DraftStore) UpdateDraftPayment(ctx context.Context, index int, patch sfa.PaymentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.drafts) {
		return ErrDraftIndex
	}
	entry := &s.drafts[index]
	patch.Apply(entry)

	if patch.TouchesAmount() && !s.record.IsMultiTeam && len(entry.TeamAllocations) > 0 {
		entry.TeamAllocations[0].AllocatedAmount = entry.AmountValue()
	}
	if patch.TouchesProfitInputs() || patch.TeamAllocations != nil {
		return s.recomputeProfitLocked(ctx, entry)
	}
	return nil
}

// RemoveDraftPayment removes the draft at index; later drafts shift down
func (s *DraftStore) RemoveDraftPayment(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.drafts) {
		return ErrDraftIndex
	}
	drafts := make([]sfa.PaymentEntry, 0, len(s.drafts)-1)
	drafts = append(drafts, s.drafts[:index]...)
	s.drafts = append(drafts, s.drafts[index+1:]...)
	keys := make([]uuid.UUID, 0, len(s.keys)-1)
	keys = append(keys, s.keys[:index]...)
	s.keys = append(keys, s.keys[index+1:]...)
	return nil
}

// ResetDrafts discards every draft
func (s *DraftStore) ResetDrafts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = []sfa.PaymentEntry{}
	s.keys = []uuid.UUID{}
}

// SelectForEdit replaces the drafts with a copy of the committed payment
// paymentID. It reports false and changes nothing when the id is unknown.
func (s *DraftStore) SelectForEdit(paymentID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.record.FindPayment(paymentID)
	if p == nil {
		return false
	}
	s.drafts = []sfa.PaymentEntry{p.Clone()}
	s.keys = []uuid.UUID{uuid.New()}
	return true
}

// ReplaceCommitted swaps in a freshly fetched committed payment list
func (s *DraftStore) ReplaceCommitted(payments []sfa.PaymentEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Payments = sfa.ClonePayments(payments)
}

// AllocateDraftByRatio splits the draft's amount across the sales items in
// proportion to their declared amounts
func (s *DraftStore) AllocateDraftByRatio(ctx context.Context, index int) error {
	return s.allocateDraft(ctx, index, allocation.RatioStrategyName)
}

// AllocateDraftEqually splits the draft's amount evenly across the sales items
func (s *DraftStore) AllocateDraftEqually(ctx context.Context, index int) error {
	return s.allocateDraft(ctx, index, allocation.EqualStrategyName)
}

func (s *DraftStore) allocateDraft(ctx context.Context, index int, strategyName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.drafts) {
		return ErrDraftIndex
	}
	if !s.record.IsMultiTeam {
		return ErrNotMultiTeam
	}
	splitter, err := s.splitters.GetSplitStrategy(strategyName)
	if err != nil {
		return err
	}

	entry := &s.drafts[index]
	allocs, err := sfa.Allocate(ctx, splitter, entry.AmountValue(), s.record.SalesItems)
	if err != nil {
		return err
	}
	entry.TeamAllocations = allocs
	return s.recomputeProfitLocked(ctx, entry)
}

// UpdateDraftAllocation sets one team's allocated amount by hand
func (s *DraftStore) UpdateDraftAllocation(ctx context.Context, index, allocIndex int, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.drafts) {
		return ErrDraftIndex
	}
	if !s.record.IsMultiTeam {
		return ErrNotMultiTeam
	}
	entry := &s.drafts[index]
	if allocIndex < 0 || allocIndex >= len(entry.TeamAllocations) {
		return ErrAllocIndex
	}
	entry.TeamAllocations[allocIndex].AllocatedAmount = amount
	return s.recomputeProfitLocked(ctx, entry)
}

// ValidateDraftAllocations checks the team split of the draft at index
func (s *DraftStore) ValidateDraftAllocations(index int) (sfa.AllocationValidation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.drafts) {
		return sfa.AllocationValidation{}, ErrDraftIndex
	}
	entry := s.drafts[index]
	return sfa.ValidateAllocations(entry.TeamAllocations, entry.AmountValue()), nil
}

// removeDraftsByKey drops the drafts with the given keys in one step.
// Keys no longer present are ignored.
func (s *DraftStore) removeDraftsByKey(keys []uuid.UUID) {
	if len(keys) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[uuid.UUID]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	kept := make([]sfa.PaymentEntry, 0, len(s.drafts))
	keptKeys := make([]uuid.UUID, 0, len(s.keys))
	for i, d := range s.drafts {
		if !drop[s.keys[i]] {
			kept = append(kept, d)
			keptKeys = append(keptKeys, s.keys[i])
		}
	}
	s.drafts = kept
	s.keys = keptKeys
}

// recomputeProfitLocked derives the profit amount from the current inputs
// and spreads it over the allocations. A non-numeric margin yields zero;
// validation reports it.
func (s *DraftStore) recomputeProfitLocked(ctx context.Context, entry *sfa.PaymentEntry) error {
	res, err := sfa.CalculateProfit(entry.AmountValue(), entry.MarginProfitValue, entry.IsProfit)
	if err != nil {
		entry.ProfitAmount = 0
	} else {
		if res.Corrected {
			s.logger.Warn("profit amount rounded to integer",
				zap.String("original", res.Original.String()),
				zap.Int64("rounded", res.Amount),
				zap.String("margin_profit_value", entry.MarginProfitValue),
				zap.Bool("is_profit", entry.IsProfit),
			)
		}
		entry.ProfitAmount = res.Amount
	}

	splitter, err := s.splitters.GetSplitStrategy(allocation.RatioStrategyName)
	if err != nil {
		return err
	}
	return sfa.DistributeProfit(ctx, splitter, entry.TeamAllocations, entry.ProfitAmount)
}

// rebuildAllocationsLocked re-templates every draft's allocations after the
// sales items or team mode changed. Amounts are kept for allocations whose
// team and item still exist.
func (s *DraftStore) rebuildAllocationsLocked(ctx context.Context) error {
	for i := range s.drafts {
		entry := &s.drafts[i]
		prev := make(map[[2]string]int64, len(entry.TeamAllocations))
		for _, a := range entry.TeamAllocations {
			prev[[2]string{a.TeamID, a.ItemID}] = a.AllocatedAmount
		}

		allocs := sfa.CreateTemplate(s.record.SalesItems)
		if !s.record.IsMultiTeam {
			if len(allocs) > 1 {
				allocs = allocs[:1]
			}
			if len(allocs) == 1 {
				allocs[0].AllocatedAmount = entry.AmountValue()
			}
		} else {
			for j := range allocs {
				allocs[j].AllocatedAmount = prev[[2]string{allocs[j].TeamID, allocs[j].ItemID}]
			}
		}
		entry.TeamAllocations = allocs
		if err := s.recomputeProfitLocked(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
