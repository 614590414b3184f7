package sfa

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
)

// ValidationGroup names a section of the revenue form
type ValidationGroup string

const (
	GroupBasicInfo  ValidationGroup = "basicInfo"
	GroupSalesItems ValidationGroup = "salesItems"
	GroupPayments   ValidationGroup = "payments"
)

var groupOrder = []ValidationGroup{GroupBasicInfo, GroupSalesItems, GroupPayments}

var groupTitles = map[ValidationGroup]string{
	GroupBasicInfo:  "Basic info",
	GroupSalesItems: "Sales items",
	GroupPayments:   "Payments",
}

// ErrAmountMismatch is returned when sales item and payment totals differ and
// the caller has not confirmed proceeding anyway
var ErrAmountMismatch = shared.NewDomainError("AMOUNT_MISMATCH",
	"Sales item total does not match payment total")

// ValidationErrors holds every validation message, grouped by form section
type ValidationErrors struct {
	Groups map[ValidationGroup][]string `json:"groups"`
}

// NewValidationErrors creates an empty error set
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Groups: make(map[ValidationGroup][]string)}
}

// Add appends messages to a group
func (v *ValidationErrors) Add(group ValidationGroup, messages ...string) {
	if len(messages) == 0 {
		return
	}
	v.Groups[group] = append(v.Groups[group], messages...)
}

// HasErrors returns true if any group has a message
func (v *ValidationErrors) HasErrors() bool {
	for _, msgs := range v.Groups {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}

// Err returns v as an error, or nil when there is nothing to report
func (v *ValidationErrors) Err() error {
	if v == nil || !v.HasErrors() {
		return nil
	}
	return v
}

// Error renders one line per non-empty group in form order
func (v *ValidationErrors) Error() string {
	var b strings.Builder
	for _, group := range groupOrder {
		msgs := v.Groups[group]
		if len(msgs) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(groupTitles[group])
		b.WriteString(": ")
		b.WriteString(strings.Join(msgs, "; "))
	}
	return b.String()
}

// Is lets errors.Is match shared.ErrValidation
func (v *ValidationErrors) Is(target error) bool {
	return target == shared.ErrValidation
}

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("label")
	})
	return v
}

type basicInfoFields struct {
	Name           string `label:"Name" validate:"required"`
	Classification string `label:"Classification" validate:"required"`
	SalesType      string `label:"Sales type" validate:"required"`
	CustomerID     string `label:"Customer" validate:"required"`
	HasPartner     bool   `label:"Selling partner flag"`
	PartnerID      string `label:"Selling partner" validate:"required_if=HasPartner true"`
}

type salesItemFields struct {
	ItemName string `label:"Item name" validate:"required"`
	TeamName string `label:"Team name" validate:"required"`
	Amount   string `label:"Amount" validate:"required"`
}

type paymentFields struct {
	BillingType       string `label:"Billing type" validate:"required"`
	Amount            string `label:"Amount" validate:"required"`
	MarginProfitValue string `label:"Margin/profit value" validate:"required"`
	RecognitionDate   string `label:"Recognition date" validate:"required"`
}

// missingFields returns "<label> is required" for every failing field of s
func missingFields(s any) []string {
	err := fieldValidator.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" is required")
	}
	return msgs
}

// ValidateBasicInfo checks the required header fields of a record
func ValidateBasicInfo(r *RevenueRecord) []string {
	return missingFields(basicInfoFields{
		Name:           strings.TrimSpace(r.Name),
		Classification: r.Classification,
		SalesType:      r.SalesType,
		CustomerID:     r.CustomerID,
		HasPartner:     r.HasPartner,
		PartnerID:      r.PartnerID,
	})
}

// ValidateSalesItems checks that items exist and each is complete.
// Messages carry the item's 1-based position.
func ValidateSalesItems(items []SalesItem) []string {
	if len(items) == 0 {
		return []string{"At least one sales item is required"}
	}
	var msgs []string
	for i, item := range items {
		for _, m := range missingFields(salesItemFields{
			ItemName: item.ItemName,
			TeamName: item.TeamName,
			Amount:   item.Amount,
		}) {
			msgs = append(msgs, fmt.Sprintf("[Item %d] %s", i+1, m))
		}
		if m := amountMessage(item.Amount); m != "" {
			msgs = append(msgs, fmt.Sprintf("[Item %d] %s", i+1, m))
		}
	}
	return msgs
}

// amountMessage describes what is wrong with a non-empty amount string.
// Amounts beyond the int64 range are rejected rather than read as zero.
func amountMessage(amount string) string {
	if amount == "" {
		return ""
	}
	if !valueobject.IsInteger(amount) {
		return "Amount must be an integer"
	}
	if _, err := valueobject.ParseAmount(amount); err != nil {
		return "Amount is too large"
	}
	return ""
}

// ValidatePayment checks one payment entry. multiTeam additionally requires
// the team allocations to add up to the payment amount.
func ValidatePayment(p PaymentEntry, multiTeam bool) []string {
	msgs := missingFields(paymentFields{
		BillingType:       p.BillingType,
		Amount:            p.Amount,
		MarginProfitValue: p.MarginProfitValue,
		RecognitionDate:   p.RecognitionDate,
	})
	if !p.IsConfirmed && p.Probability == "" {
		msgs = append(msgs, "Probability is required unless the payment is confirmed")
	}

	amountMsg := amountMessage(p.Amount)
	if amountMsg != "" {
		msgs = append(msgs, amountMsg)
	}
	amountOK := p.Amount != "" && amountMsg == ""
	if amountOK && p.MarginProfitValue != "" {
		if m := CheckProfitRule(p.AmountValue(), p.MarginProfitValue, p.IsProfit); m != "" {
			msgs = append(msgs, m)
		}
	}

	if p.RecognitionDate != "" {
		if _, err := time.Parse(DateLayout, p.RecognitionDate); err != nil {
			msgs = append(msgs, "Recognition date must be YYYY-MM-DD")
		}
	}
	if p.ScheduledDate != "" {
		if _, err := time.Parse(DateLayout, p.ScheduledDate); err != nil {
			msgs = append(msgs, "Scheduled date must be YYYY-MM-DD")
		}
	}

	if multiTeam && amountOK {
		if res := ValidateAllocations(p.TeamAllocations, p.AmountValue()); !res.Valid {
			msgs = append(msgs, res.Error)
		}
	}
	return msgs
}

// ValidatePayments checks that payments exist and each is valid.
// Messages carry the payment's 1-based position.
func ValidatePayments(payments []PaymentEntry, multiTeam bool) []string {
	if len(payments) == 0 {
		return []string{"At least one payment is required"}
	}
	var msgs []string
	for i, p := range payments {
		for _, m := range ValidatePayment(p, multiTeam) {
			msgs = append(msgs, fmt.Sprintf("[Payment %d] %s", i+1, m))
		}
	}
	return msgs
}

// Validate evaluates every group of the record and returns a
// *ValidationErrors holding all failures, or nil
func Validate(r *RevenueRecord) error {
	verrs := NewValidationErrors()
	verrs.Add(GroupBasicInfo, ValidateBasicInfo(r)...)
	verrs.Add(GroupSalesItems, ValidateSalesItems(r.SalesItems)...)
	verrs.Add(GroupPayments, ValidatePayments(r.ActivePayments(), r.IsMultiTeam)...)
	return verrs.Err()
}

// CheckAmounts reports whether the declared sales item total equals the
// total of the non-deleted payments. A mismatch is advisory.
func CheckAmounts(items []SalesItem, payments []PaymentEntry) bool {
	var itemTotal int64
	for _, item := range items {
		itemTotal += item.AmountValue()
	}
	return itemTotal == SumPaymentAmounts(payments)
}
