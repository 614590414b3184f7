package sfa

import (
	"time"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for recognition and scheduled dates
const DateLayout = "2006-01-02"

// ProbabilityConfirmed is the probability code forced on confirmed payments
const ProbabilityConfirmed = "100"

// Code categories served by the code lookup service
const (
	CodeCategoryBillingType = "billing_type"
	CodeCategoryProbability = "probability"
	CodeCategorySalesType   = "sales_type"
	CodeCategoryClassify    = "sfa_classification"
)

// PaymentEntry is one payment term against a RevenueRecord
type PaymentEntry struct {
	shared.BaseEntity
	RevenueID         uuid.UUID        `json:"sfaId"`
	IsSameBilling     bool             `json:"isSameBilling"`
	RevenueSourceID   string           `json:"revenueSourceId"`
	RevenueSourceName string           `json:"revenueSourceName"`
	BillingType       string           `json:"billingType"`
	IsConfirmed       bool             `json:"isConfirmed"`
	Probability       string           `json:"probability"`
	Amount            string           `json:"amount"` // integer string as typed by the user
	IsProfit          bool             `json:"isProfit"`
	MarginProfitValue string           `json:"marginProfitValue"`
	ProfitAmount      int64            `json:"profitAmount"`
	RecognitionDate   string           `json:"recognitionDate"`
	ScheduledDate     string           `json:"scheduledDate"`
	Memo              string           `json:"memo"`
	TeamAllocations   []TeamAllocation `json:"teamAllocations"`
	IsDeleted         bool             `json:"isDeleted"`
}

// TeamAllocation is a business unit's share of one PaymentEntry amount
type TeamAllocation struct {
	TeamID                string `json:"teamId"`
	TeamName              string `json:"teamName"`
	ItemID                string `json:"itemId"`
	ItemName              string `json:"itemName"`
	AllocatedAmount       int64  `json:"allocatedAmount"`
	AllocatedProfitAmount int64  `json:"allocatedProfitAmount"`
}

// ProfitConfig is the structured form of the profit/margin settings of a payment
type ProfitConfig struct {
	IsProfit          bool   `json:"isProfit"`
	MarginProfitValue string `json:"marginProfitValue"`
	ProfitAmount      int64  `json:"profitAmount"`
}

// HistoryAction identifies what a payment history row recorded
type HistoryAction string

const (
	HistoryActionCreated HistoryAction = "CREATED"
	HistoryActionUpdated HistoryAction = "UPDATED"
	HistoryActionDeleted HistoryAction = "DELETED"
)

// PaymentHistory is one change-log row of a payment entry
type PaymentHistory struct {
	ID        uuid.UUID     `json:"id"`
	PaymentID uuid.UUID     `json:"paymentId"`
	Action    HistoryAction `json:"action"`
	Snapshot  PaymentEntry  `json:"snapshot"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewPaymentEntry returns a zero-valued payment ready for editing
func NewPaymentEntry(revenueID uuid.UUID) PaymentEntry {
	return PaymentEntry{
		RevenueID:       revenueID,
		Amount:          "0",
		TeamAllocations: []TeamAllocation{},
	}
}

// AmountValue returns the parsed amount, treating bad input as zero
func (p PaymentEntry) AmountValue() int64 {
	n, err := valueobject.ParseAmount(p.Amount)
	if err != nil {
		return 0
	}
	return n
}

// ProfitConfig returns the nested profit settings of the payment
func (p PaymentEntry) ProfitConfig() ProfitConfig {
	return ProfitConfig{
		IsProfit:          p.IsProfit,
		MarginProfitValue: p.MarginProfitValue,
		ProfitAmount:      p.ProfitAmount,
	}
}

// ApplyProfitConfig copies nested profit settings onto the payment
func (p *PaymentEntry) ApplyProfitConfig(cfg ProfitConfig) {
	p.IsProfit = cfg.IsProfit
	p.MarginProfitValue = cfg.MarginProfitValue
	p.ProfitAmount = cfg.ProfitAmount
}

// AllocatedTotal sums the allocated amounts of the team allocations
func (p PaymentEntry) AllocatedTotal() int64 {
	var total int64
	for _, a := range p.TeamAllocations {
		total += a.AllocatedAmount
	}
	return total
}

// Clone returns a deep copy of the payment
func (p PaymentEntry) Clone() PaymentEntry {
	out := p
	if p.TeamAllocations != nil {
		out.TeamAllocations = append([]TeamAllocation(nil), p.TeamAllocations...)
	}
	return out
}

// ClonePayments deep-copies a payment list
func ClonePayments(payments []PaymentEntry) []PaymentEntry {
	if payments == nil {
		return nil
	}
	out := make([]PaymentEntry, len(payments))
	for i, p := range payments {
		out[i] = p.Clone()
	}
	return out
}

// SumPaymentAmounts sums the amounts of the non-deleted payments
func SumPaymentAmounts(payments []PaymentEntry) int64 {
	var total int64
	for _, p := range payments {
		if p.IsDeleted {
			continue
		}
		total += p.AmountValue()
	}
	return total
}
