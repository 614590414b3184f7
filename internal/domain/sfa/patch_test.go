package sfa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestPaymentPatch_Apply(t *testing.T) {
	t.Run("nil fields are left unchanged", func(t *testing.T) {
		entry := PaymentEntry{BillingType: "TAX", Amount: "100", Memo: "keep"}
		PaymentPatch{Amount: strPtr("200")}.Apply(&entry)

		assert.Equal(t, "TAX", entry.BillingType)
		assert.Equal(t, "200", entry.Amount)
		assert.Equal(t, "keep", entry.Memo)
	})

	t.Run("confirming forces probability", func(t *testing.T) {
		entry := PaymentEntry{Probability: "50"}
		PaymentPatch{IsConfirmed: boolPtr(true)}.Apply(&entry)

		assert.True(t, entry.IsConfirmed)
		assert.Equal(t, ProbabilityConfirmed, entry.Probability)
	})

	t.Run("probability cannot be lowered while confirmed", func(t *testing.T) {
		entry := PaymentEntry{IsConfirmed: true, Probability: ProbabilityConfirmed}
		PaymentPatch{Probability: strPtr("30")}.Apply(&entry)

		assert.Equal(t, ProbabilityConfirmed, entry.Probability)
	})

	t.Run("allocations are copied", func(t *testing.T) {
		allocs := []TeamAllocation{{TeamID: "A", AllocatedAmount: 10}}
		entry := PaymentEntry{}
		PaymentPatch{TeamAllocations: &allocs}.Apply(&entry)

		allocs[0].AllocatedAmount = 99
		assert.Equal(t, int64(10), entry.TeamAllocations[0].AllocatedAmount)
	})
}

func TestPaymentPatch_Touches(t *testing.T) {
	assert.True(t, PaymentPatch{}.IsEmpty())
	assert.False(t, PaymentPatch{Memo: strPtr("")}.IsEmpty())

	assert.True(t, PaymentPatch{Amount: strPtr("1")}.TouchesAmount())
	assert.True(t, PaymentPatch{IsProfit: boolPtr(false)}.TouchesProfitInputs())
	assert.True(t, PaymentPatch{MarginProfitValue: strPtr("10")}.TouchesProfitInputs())
	assert.False(t, PaymentPatch{Memo: strPtr("x")}.TouchesProfitInputs())
}

func TestPatchFromEntry(t *testing.T) {
	entry := PaymentEntry{
		BillingType:     "TAX",
		Amount:          "1000",
		ScheduledDate:   "",
		TeamAllocations: []TeamAllocation{{TeamID: "A", AllocatedAmount: 1000}},
	}
	patch := PatchFromEntry(entry)

	var target PaymentEntry
	patch.Apply(&target)

	assert.Equal(t, entry.BillingType, target.BillingType)
	assert.Equal(t, entry.Amount, target.Amount)
	assert.Equal(t, entry.TeamAllocations, target.TeamAllocations)
	assert.Nil(t, patch.IsDeleted)
}

func TestSoftDeletePatch(t *testing.T) {
	entry := PaymentEntry{Amount: "500", TeamAllocations: []TeamAllocation{{AllocatedAmount: 500}}}
	SoftDeletePatch().Apply(&entry)

	assert.True(t, entry.IsDeleted)
	assert.Equal(t, "500", entry.Amount)
	assert.Len(t, entry.TeamAllocations, 1)
}

func TestSalesItemPatch_Apply(t *testing.T) {
	item := SalesItem{TeamID: "A", TeamName: "Team A", Amount: "100"}
	SalesItemPatch{Amount: strPtr("250"), ItemName: strPtr("License")}.Apply(&item)

	assert.Equal(t, "A", item.TeamID)
	assert.Equal(t, "250", item.Amount)
	assert.Equal(t, "License", item.ItemName)
}

func TestBulkPatch_ToPaymentPatch(t *testing.T) {
	assert.True(t, BulkPatch{}.IsEmpty())

	p := BulkPatch{IsConfirmed: boolPtr(true), Probability: strPtr("50")}.ToPaymentPatch()
	assert.Equal(t, ProbabilityConfirmed, *p.Probability)

	date := "2026-03-01"
	p = BulkPatch{RecognitionDate: &date}.ToPaymentPatch()
	assert.Equal(t, date, *p.RecognitionDate)
	assert.Nil(t, p.Probability)
}
