package sfa

import (
	"fmt"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const (
	// MaxSalesItems is the most sales items a multi-team record may carry
	MaxSalesItems = 3
	// MaxDraftPayments is the most payment entries that can be drafted at once
	MaxDraftPayments = 3
)

// RevenueRecord is one sales event. It owns its sales items and committed
// payment entries by value.
type RevenueRecord struct {
	shared.BaseEntity
	Name           string         `json:"name"`
	Classification string         `json:"classification"`
	SalesType      string         `json:"salesType"`
	CustomerID     string         `json:"customerId"`
	CustomerName   string         `json:"customerName"`
	IsProject      bool           `json:"isProject"`
	HasPartner     bool           `json:"hasPartner"`
	PartnerID      string         `json:"partnerId"`
	PartnerName    string         `json:"partnerName"`
	IsMultiTeam    bool           `json:"isMultiTeam"`
	Note           string         `json:"note"`
	SalesItems     []SalesItem    `json:"salesItems"`
	Payments       []PaymentEntry `json:"payments"`
}

// SalesItem is a business-unit revenue allocation tied to a RevenueRecord
type SalesItem struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Amount   string `json:"amount"` // integer string as typed by the user
}

// AmountValue returns the parsed declared amount, treating bad input as zero
func (s SalesItem) AmountValue() int64 {
	n, err := valueobject.ParseAmount(s.Amount)
	if err != nil {
		return 0
	}
	return n
}

// Customer is the minimal customer reference used to prefill billing source
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Clone returns a deep copy so the result shares no slices with r
func (r *RevenueRecord) Clone() *RevenueRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.SalesItems = append([]SalesItem(nil), r.SalesItems...)
	out.Payments = ClonePayments(r.Payments)
	return &out
}

// SalesItemLimit returns how many sales items the record may hold
func (r *RevenueRecord) SalesItemLimit() int {
	if r.IsMultiTeam {
		return MaxSalesItems
	}
	return 1
}

// AddSalesItem appends an item, enforcing the single/multi-team limit
func (r *RevenueRecord) AddSalesItem(item SalesItem) error {
	if len(r.SalesItems) >= r.SalesItemLimit() {
		return shared.NewDomainError("SALES_ITEM_LIMIT",
			fmt.Sprintf("A record can hold at most %d sales item(s)", r.SalesItemLimit()))
	}
	r.SalesItems = append(r.SalesItems, item)
	return nil
}

// RemoveSalesItem removes the item at index; later items shift down by one
func (r *RevenueRecord) RemoveSalesItem(index int) error {
	if index < 0 || index >= len(r.SalesItems) {
		return shared.NewDomainError("INVALID_INDEX", fmt.Sprintf("No sales item at position %d", index+1))
	}
	items := make([]SalesItem, 0, len(r.SalesItems)-1)
	items = append(items, r.SalesItems[:index]...)
	r.SalesItems = append(items, r.SalesItems[index+1:]...)
	return nil
}

// SalesItemTotal sums the declared amounts of all sales items
func (r *RevenueRecord) SalesItemTotal() int64 {
	var total int64
	for _, item := range r.SalesItems {
		total += item.AmountValue()
	}
	return total
}

// FindPayment returns the committed payment with id, or nil
func (r *RevenueRecord) FindPayment(id uuid.UUID) *PaymentEntry {
	for i := range r.Payments {
		if r.Payments[i].ID == id {
			return &r.Payments[i]
		}
	}
	return nil
}

// ActivePayments returns the committed payments that are not soft-deleted
func (r *RevenueRecord) ActivePayments() []PaymentEntry {
	out := make([]PaymentEntry, 0, len(r.Payments))
	for _, p := range r.Payments {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out
}
