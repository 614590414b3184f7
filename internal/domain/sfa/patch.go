package sfa

// PaymentPatch is a partial update of a PaymentEntry. Each nil field is
// left unchanged. It is used for draft edits, remote updates and bulk edits.
type PaymentPatch struct {
	IsSameBilling     *bool
	RevenueSourceID   *string
	RevenueSourceName *string
	BillingType       *string
	IsConfirmed       *bool
	Probability       *string
	Amount            *string
	IsProfit          *bool
	MarginProfitValue *string
	ProfitAmount      *int64
	RecognitionDate   *string
	ScheduledDate     *string
	Memo              *string
	TeamAllocations   *[]TeamAllocation
	IsDeleted         *bool
}

// IsEmpty reports whether the patch changes nothing
func (p PaymentPatch) IsEmpty() bool {
	return p == PaymentPatch{}
}

// TouchesAmount reports whether the patch sets the payment amount
func (p PaymentPatch) TouchesAmount() bool {
	return p.Amount != nil
}

// TouchesProfitInputs reports whether the patch changes a field the derived
// profit amount depends on
func (p PaymentPatch) TouchesProfitInputs() bool {
	return p.Amount != nil || p.MarginProfitValue != nil || p.IsProfit != nil
}

// Apply merges the patch into entry. Confirming a payment forces the
// probability to ProbabilityConfirmed.
func (p PaymentPatch) Apply(entry *PaymentEntry) {
	if p.IsSameBilling != nil {
		entry.IsSameBilling = *p.IsSameBilling
	}
	if p.RevenueSourceID != nil {
		entry.RevenueSourceID = *p.RevenueSourceID
	}
	if p.RevenueSourceName != nil {
		entry.RevenueSourceName = *p.RevenueSourceName
	}
	if p.BillingType != nil {
		entry.BillingType = *p.BillingType
	}
	if p.Probability != nil {
		entry.Probability = *p.Probability
	}
	if p.IsConfirmed != nil {
		entry.IsConfirmed = *p.IsConfirmed
	}
	if entry.IsConfirmed {
		entry.Probability = ProbabilityConfirmed
	}
	if p.Amount != nil {
		entry.Amount = *p.Amount
	}
	if p.IsProfit != nil {
		entry.IsProfit = *p.IsProfit
	}
	if p.MarginProfitValue != nil {
		entry.MarginProfitValue = *p.MarginProfitValue
	}
	if p.ProfitAmount != nil {
		entry.ProfitAmount = *p.ProfitAmount
	}
	if p.RecognitionDate != nil {
		entry.RecognitionDate = *p.RecognitionDate
	}
	if p.ScheduledDate != nil {
		entry.ScheduledDate = *p.ScheduledDate
	}
	if p.Memo != nil {
		entry.Memo = *p.Memo
	}
	if p.TeamAllocations != nil {
		entry.TeamAllocations = append([]TeamAllocation{}, (*p.TeamAllocations)...)
	}
	if p.IsDeleted != nil {
		entry.IsDeleted = *p.IsDeleted
	}
}

// PatchFromEntry builds a patch carrying every editable field of entry.
// Identifier fields are not part of a patch.
func PatchFromEntry(entry PaymentEntry) PaymentPatch {
	allocs := append([]TeamAllocation{}, entry.TeamAllocations...)
	return PaymentPatch{
		IsSameBilling:     &entry.IsSameBilling,
		RevenueSourceID:   &entry.RevenueSourceID,
		RevenueSourceName: &entry.RevenueSourceName,
		BillingType:       &entry.BillingType,
		IsConfirmed:       &entry.IsConfirmed,
		Probability:       &entry.Probability,
		Amount:            &entry.Amount,
		IsProfit:          &entry.IsProfit,
		MarginProfitValue: &entry.MarginProfitValue,
		ProfitAmount:      &entry.ProfitAmount,
		RecognitionDate:   &entry.RecognitionDate,
		ScheduledDate:     &entry.ScheduledDate,
		Memo:              &entry.Memo,
		TeamAllocations:   &allocs,
	}
}

// SoftDeletePatch marks a payment deleted and touches nothing else
func SoftDeletePatch() PaymentPatch {
	deleted := true
	return PaymentPatch{IsDeleted: &deleted}
}

// SalesItemPatch is a partial update of a SalesItem
type SalesItemPatch struct {
	TeamID   *string
	TeamName *string
	ItemID   *string
	ItemName *string
	Amount   *string
}

// Apply merges the patch into item
func (p SalesItemPatch) Apply(item *SalesItem) {
	if p.TeamID != nil {
		item.TeamID = *p.TeamID
	}
	if p.TeamName != nil {
		item.TeamName = *p.TeamName
	}
	if p.ItemID != nil {
		item.ItemID = *p.ItemID
	}
	if p.ItemName != nil {
		item.ItemName = *p.ItemName
	}
	if p.Amount != nil {
		item.Amount = *p.Amount
	}
}

// BulkPatch is the restricted patch applied to many payments at once from
// the listing: a new recognition date, or a probability/confirmed pair
type BulkPatch struct {
	RecognitionDate *string
	Probability     *string
	IsConfirmed     *bool
}

// IsEmpty reports whether the bulk patch changes nothing
func (b BulkPatch) IsEmpty() bool {
	return b.RecognitionDate == nil && b.Probability == nil && b.IsConfirmed == nil
}

// ToPaymentPatch widens b to a PaymentPatch. Confirming sends the forced
// probability explicitly.
func (b BulkPatch) ToPaymentPatch() PaymentPatch {
	p := PaymentPatch{
		RecognitionDate: b.RecognitionDate,
		Probability:     b.Probability,
		IsConfirmed:     b.IsConfirmed,
	}
	if b.IsConfirmed != nil && *b.IsConfirmed {
		prob := ProbabilityConfirmed
		p.Probability = &prob
	}
	return p
}
