package sfa

import (
	"errors"
	"strings"
	"testing"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayment() PaymentEntry {
	return PaymentEntry{
		BillingType:       "TAX_INVOICE",
		Probability:       "70",
		Amount:            "1000000",
		MarginProfitValue: "10",
		ProfitAmount:      100000,
		RecognitionDate:   "2026-03-31",
	}
}

func validRecord() *RevenueRecord {
	return &RevenueRecord{
		Name:           "ERP rollout",
		Classification: "NEW",
		SalesType:      "LICENSE",
		CustomerID:     "cust-1",
		CustomerName:   "Acme",
		SalesItems: []SalesItem{
			{TeamID: "team-a", TeamName: "Team A", ItemID: "item-1", ItemName: "License", Amount: "1000000"},
		},
		Payments: []PaymentEntry{validPayment()},
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	assert.NoError(t, Validate(validRecord()))
}

func TestValidate_AllGroupsEvaluated(t *testing.T) {
	r := &RevenueRecord{}

	err := Validate(r)
	require.Error(t, err)

	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{
		"Name is required",
		"Classification is required",
		"Sales type is required",
		"Customer is required",
	}, verrs.Groups[GroupBasicInfo])
	assert.Equal(t, []string{"At least one sales item is required"}, verrs.Groups[GroupSalesItems])
	assert.Equal(t, []string{"At least one payment is required"}, verrs.Groups[GroupPayments])

	assert.True(t, errors.Is(err, shared.ErrValidation))

	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Basic info: "))
	assert.True(t, strings.HasPrefix(lines[1], "Sales items: "))
	assert.True(t, strings.HasPrefix(lines[2], "Payments: "))
}

func TestValidateBasicInfo_Partner(t *testing.T) {
	r := validRecord()
	r.HasPartner = true
	assert.Equal(t, []string{"Selling partner is required"}, ValidateBasicInfo(r))

	r.PartnerID = "partner-1"
	assert.Empty(t, ValidateBasicInfo(r))
}

func TestValidateBasicInfo_BlankName(t *testing.T) {
	r := validRecord()
	r.Name = "   "
	assert.Equal(t, []string{"Name is required"}, ValidateBasicInfo(r))
}

func TestValidateSalesItems_Positions(t *testing.T) {
	items := []SalesItem{
		{TeamName: "Team A", ItemName: "License", Amount: "100"},
		{TeamName: "", ItemName: "", Amount: "1,000"},
	}

	msgs := ValidateSalesItems(items)
	assert.Equal(t, []string{
		"[Item 2] Item name is required",
		"[Item 2] Team name is required",
		"[Item 2] Amount must be an integer",
	}, msgs)
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *PaymentEntry)
		want   []string
	}{
		{"valid", func(p *PaymentEntry) {}, nil},
		{"confirmed without probability", func(p *PaymentEntry) {
			p.Probability = ""
			p.IsConfirmed = true
		}, nil},
		{"missing probability", func(p *PaymentEntry) { p.Probability = "" },
			[]string{"Probability is required unless the payment is confirmed"}},
		{"missing billing type", func(p *PaymentEntry) { p.BillingType = "" },
			[]string{"Billing type is required"}},
		{"missing recognition date", func(p *PaymentEntry) { p.RecognitionDate = "" },
			[]string{"Recognition date is required"}},
		{"bad recognition date", func(p *PaymentEntry) { p.RecognitionDate = "31/03/2026" },
			[]string{"Recognition date must be YYYY-MM-DD"}},
		{"bad scheduled date", func(p *PaymentEntry) { p.ScheduledDate = "soon" },
			[]string{"Scheduled date must be YYYY-MM-DD"}},
		{"non-integer amount", func(p *PaymentEntry) { p.Amount = "12.5" },
			[]string{"Amount must be an integer"}},
		{"amount beyond int64", func(p *PaymentEntry) { p.Amount = "99999999999999999999" },
			[]string{"Amount is too large"}},
		{"percentage above hundred", func(p *PaymentEntry) { p.MarginProfitValue = "120" },
			[]string{"Margin percentage must be between 0 and 100"}},
		{"profit above amount", func(p *PaymentEntry) {
			p.IsProfit = true
			p.MarginProfitValue = "2000000"
		}, []string{"Profit amount must not exceed the payment amount"}},
		{"missing margin value", func(p *PaymentEntry) { p.MarginProfitValue = "" },
			[]string{"Margin/profit value is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayment()
			tt.mutate(&p)
			assert.Equal(t, tt.want, ValidatePayment(p, false))
		})
	}
}

func TestValidatePayment_MultiTeamAllocations(t *testing.T) {
	p := validPayment()
	p.TeamAllocations = []TeamAllocation{{AllocatedAmount: 600000}, {AllocatedAmount: 300000}}

	msgs := ValidatePayment(p, true)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "does not match payment amount")

	p.TeamAllocations[1].AllocatedAmount = 400000
	assert.Empty(t, ValidatePayment(p, true))

	// single-team mode does not look at allocations
	p.TeamAllocations = nil
	assert.Empty(t, ValidatePayment(p, false))
}

func TestValidatePayment_OverflowingAmount(t *testing.T) {
	p := validPayment()
	p.Amount = "99999999999999999999"
	p.TeamAllocations = []TeamAllocation{{AllocatedAmount: 0}, {AllocatedAmount: 0}}

	assert.Equal(t, []string{"Amount is too large"}, ValidatePayment(p, true))

	items := []SalesItem{{TeamName: "Team A", ItemName: "License", Amount: "99999999999999999999"}}
	assert.Equal(t, []string{"[Item 1] Amount is too large"}, ValidateSalesItems(items))

	record := validRecord()
	record.IsMultiTeam = true
	record.Payments = []PaymentEntry{p}
	var verrs *ValidationErrors
	require.ErrorAs(t, Validate(record), &verrs)
	assert.True(t, verrs.HasErrors())
}

func TestValidatePayments_Positions(t *testing.T) {
	bad := validPayment()
	bad.BillingType = ""

	msgs := ValidatePayments([]PaymentEntry{validPayment(), bad}, false)
	assert.Equal(t, []string{"[Payment 2] Billing type is required"}, msgs)
}

func TestValidate_SkipsDeletedPayments(t *testing.T) {
	r := validRecord()
	deleted := validPayment()
	deleted.BillingType = ""
	deleted.IsDeleted = true
	r.Payments = append(r.Payments, deleted)

	assert.NoError(t, Validate(r))
}

func TestCheckAmounts(t *testing.T) {
	items := []SalesItem{{Amount: "600000"}, {Amount: "400000"}}

	t.Run("matching totals", func(t *testing.T) {
		payments := []PaymentEntry{{Amount: "500000"}, {Amount: "500000"}}
		assert.True(t, CheckAmounts(items, payments))
	})

	t.Run("item total exceeds payment total", func(t *testing.T) {
		payments := []PaymentEntry{{Amount: "900000"}}
		assert.False(t, CheckAmounts(items, payments))
	})

	t.Run("deleted payments are ignored", func(t *testing.T) {
		payments := []PaymentEntry{{Amount: "1000000"}, {Amount: "5", IsDeleted: true}}
		assert.True(t, CheckAmounts(items, payments))
	})
}

func TestValidationErrors_Err(t *testing.T) {
	verrs := NewValidationErrors()
	assert.NoError(t, verrs.Err())

	verrs.Add(GroupPayments)
	assert.NoError(t, verrs.Err())

	verrs.Add(GroupPayments, "x")
	assert.Error(t, verrs.Err())
	assert.Equal(t, "Payments: x", verrs.Error())

	var nilErrs *ValidationErrors
	assert.NoError(t, nilErrs.Err())
}
