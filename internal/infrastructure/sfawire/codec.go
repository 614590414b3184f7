// Package sfawire is the JSON encoding shared by the remote store and its
// client. Keys are snake_case on the wire and camelCase in memory. The
// profit settings and team allocations of a payment travel as embedded JSON
// strings inside an otherwise flat record; in memory they stay structured.
package sfawire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/google/uuid"
)

// paymentRecord is the flat wire form of a PaymentEntry
type paymentRecord struct {
	ID                string     `json:"id,omitempty"`
	SfaID             string     `json:"sfaId"`
	IsSameBilling     bool       `json:"isSameBilling"`
	RevenueSourceID   string     `json:"revenueSourceId"`
	RevenueSourceName string     `json:"revenueSourceName"`
	BillingType       string     `json:"billingType"`
	IsConfirmed       bool       `json:"isConfirmed"`
	Probability       string     `json:"probability"`
	Amount            string     `json:"amount"`
	ProfitConfig      string     `json:"profitConfig"`
	RecognitionDate   string     `json:"recognitionDate"`
	ScheduledDate     *string    `json:"scheduledDate"`
	Memo              string     `json:"memo"`
	TeamAllocations   *string    `json:"teamAllocations,omitempty"`
	IsDeleted         bool       `json:"isDeleted"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// revenueRecord is the wire form of a RevenueRecord
type revenueRecord struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	Classification string          `json:"classification"`
	SalesType      string          `json:"salesType"`
	CustomerID     string          `json:"customerId"`
	CustomerName   string          `json:"customerName"`
	IsProject      bool            `json:"isProject"`
	HasPartner     bool            `json:"hasPartner"`
	PartnerID      string          `json:"partnerId"`
	PartnerName    string          `json:"partnerName"`
	IsMultiTeam    bool            `json:"isMultiTeam"`
	Note           string          `json:"note"`
	SalesItems     []sfa.SalesItem `json:"salesItems"`
	Payments       []paymentRecord `json:"payments"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// EncodeProfitConfig renders the profit settings as the embedded JSON string
func EncodeProfitConfig(cfg sfa.ProfitConfig) (string, error) {
	data, err := Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeProfitConfig parses the embedded profit settings. Empty input is
// the zero config.
func DecodeProfitConfig(s string) (sfa.ProfitConfig, error) {
	var cfg sfa.ProfitConfig
	if s == "" {
		return cfg, nil
	}
	if err := Unmarshal([]byte(s), &cfg); err != nil {
		return cfg, fmt.Errorf("decode profit config: %w", err)
	}
	return cfg, nil
}

// EncodeTeamAllocations renders allocations as the embedded JSON string
func EncodeTeamAllocations(allocs []sfa.TeamAllocation) (string, error) {
	if allocs == nil {
		allocs = []sfa.TeamAllocation{}
	}
	data, err := Marshal(allocs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTeamAllocations parses embedded allocations. Empty input yields an
// empty list.
func DecodeTeamAllocations(s string) ([]sfa.TeamAllocation, error) {
	allocs := []sfa.TeamAllocation{}
	if s == "" {
		return allocs, nil
	}
	if err := Unmarshal([]byte(s), &allocs); err != nil {
		return nil, fmt.Errorf("decode team allocations: %w", err)
	}
	return allocs, nil
}

func toPaymentRecord(p sfa.PaymentEntry) (paymentRecord, error) {
	profit, err := EncodeProfitConfig(p.ProfitConfig())
	if err != nil {
		return paymentRecord{}, err
	}
	rec := paymentRecord{
		SfaID:             p.RevenueID.String(),
		IsSameBilling:     p.IsSameBilling,
		RevenueSourceID:   p.RevenueSourceID,
		RevenueSourceName: p.RevenueSourceName,
		BillingType:       p.BillingType,
		IsConfirmed:       p.IsConfirmed,
		Probability:       p.Probability,
		Amount:            p.Amount,
		ProfitConfig:      profit,
		RecognitionDate:   p.RecognitionDate,
		ScheduledDate:     nullIfEmpty(p.ScheduledDate),
		Memo:              p.Memo,
		IsDeleted:         p.IsDeleted,
		CreatedAt:         timePtr(p.CreatedAt),
		UpdatedAt:         timePtr(p.UpdatedAt),
	}
	if p.ID != uuid.Nil {
		rec.ID = p.ID.String()
	}
	if len(p.TeamAllocations) > 0 {
		allocs, err := EncodeTeamAllocations(p.TeamAllocations)
		if err != nil {
			return paymentRecord{}, err
		}
		rec.TeamAllocations = &allocs
	}
	return rec, nil
}

func fromPaymentRecord(rec paymentRecord) (sfa.PaymentEntry, error) {
	var p sfa.PaymentEntry
	var err error
	if p.ID, err = parseOptionalUUID(rec.ID); err != nil {
		return p, err
	}
	if p.RevenueID, err = parseOptionalUUID(rec.SfaID); err != nil {
		return p, err
	}
	cfg, err := DecodeProfitConfig(rec.ProfitConfig)
	if err != nil {
		return p, err
	}
	p.ApplyProfitConfig(cfg)

	p.TeamAllocations = []sfa.TeamAllocation{}
	if rec.TeamAllocations != nil {
		if p.TeamAllocations, err = DecodeTeamAllocations(*rec.TeamAllocations); err != nil {
			return p, err
		}
	}

	p.IsSameBilling = rec.IsSameBilling
	p.RevenueSourceID = rec.RevenueSourceID
	p.RevenueSourceName = rec.RevenueSourceName
	p.BillingType = rec.BillingType
	p.IsConfirmed = rec.IsConfirmed
	p.Probability = rec.Probability
	p.Amount = rec.Amount
	p.RecognitionDate = rec.RecognitionDate
	if rec.ScheduledDate != nil {
		p.ScheduledDate = *rec.ScheduledDate
	}
	p.Memo = rec.Memo
	p.IsDeleted = rec.IsDeleted
	if rec.CreatedAt != nil {
		p.CreatedAt = *rec.CreatedAt
	}
	if rec.UpdatedAt != nil {
		p.UpdatedAt = *rec.UpdatedAt
	}
	return p, nil
}

// EncodePayment renders one payment as a flat snake_case record
func EncodePayment(p sfa.PaymentEntry) ([]byte, error) {
	rec, err := toPaymentRecord(p)
	if err != nil {
		return nil, err
	}
	return Marshal(rec)
}

// DecodePayment parses a flat snake_case payment record
func DecodePayment(data []byte) (sfa.PaymentEntry, error) {
	var rec paymentRecord
	if err := Unmarshal(data, &rec); err != nil {
		return sfa.PaymentEntry{}, invalidPayload(err)
	}
	return fromPaymentRecord(rec)
}

// EncodePayments renders a payment list as a JSON array of flat records
func EncodePayments(payments []sfa.PaymentEntry) ([]byte, error) {
	recs := make([]paymentRecord, len(payments))
	for i, p := range payments {
		rec, err := toPaymentRecord(p)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}
	return Marshal(recs)
}

// DecodePayments parses a JSON array of flat payment records
func DecodePayments(data []byte) ([]sfa.PaymentEntry, error) {
	var recs []paymentRecord
	if err := Unmarshal(data, &recs); err != nil {
		return nil, invalidPayload(err)
	}
	out := make([]sfa.PaymentEntry, len(recs))
	for i, rec := range recs {
		p, err := fromPaymentRecord(rec)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// EncodeRevenue renders a record with its sales items and payments
func EncodeRevenue(r *sfa.RevenueRecord) ([]byte, error) {
	rec := revenueRecord{
		Name:           r.Name,
		Classification: r.Classification,
		SalesType:      r.SalesType,
		CustomerID:     r.CustomerID,
		CustomerName:   r.CustomerName,
		IsProject:      r.IsProject,
		HasPartner:     r.HasPartner,
		PartnerID:      r.PartnerID,
		PartnerName:    r.PartnerName,
		IsMultiTeam:    r.IsMultiTeam,
		Note:           r.Note,
		SalesItems:     r.SalesItems,
		Payments:       make([]paymentRecord, len(r.Payments)),
		CreatedAt:      timePtr(r.CreatedAt),
		UpdatedAt:      timePtr(r.UpdatedAt),
	}
	if r.ID != uuid.Nil {
		rec.ID = r.ID.String()
	}
	if rec.SalesItems == nil {
		rec.SalesItems = []sfa.SalesItem{}
	}
	for i, p := range r.Payments {
		pr, err := toPaymentRecord(p)
		if err != nil {
			return nil, err
		}
		rec.Payments[i] = pr
	}
	return Marshal(rec)
}

// DecodeRevenue parses a record with its sales items and payments
func DecodeRevenue(data []byte) (*sfa.RevenueRecord, error) {
	var rec revenueRecord
	if err := Unmarshal(data, &rec); err != nil {
		return nil, invalidPayload(err)
	}
	id, err := parseOptionalUUID(rec.ID)
	if err != nil {
		return nil, err
	}
	r := &sfa.RevenueRecord{
		Name:           rec.Name,
		Classification: rec.Classification,
		SalesType:      rec.SalesType,
		CustomerID:     rec.CustomerID,
		CustomerName:   rec.CustomerName,
		IsProject:      rec.IsProject,
		HasPartner:     rec.HasPartner,
		PartnerID:      rec.PartnerID,
		PartnerName:    rec.PartnerName,
		IsMultiTeam:    rec.IsMultiTeam,
		Note:           rec.Note,
		SalesItems:     rec.SalesItems,
		Payments:       make([]sfa.PaymentEntry, len(rec.Payments)),
	}
	r.ID = id
	if rec.CreatedAt != nil {
		r.CreatedAt = *rec.CreatedAt
	}
	if rec.UpdatedAt != nil {
		r.UpdatedAt = *rec.UpdatedAt
	}
	if r.SalesItems == nil {
		r.SalesItems = []sfa.SalesItem{}
	}
	for i, pr := range rec.Payments {
		p, err := fromPaymentRecord(pr)
		if err != nil {
			return nil, err
		}
		r.Payments[i] = p
	}
	return r, nil
}

// EncodePatch renders only the fields the patch sets. An empty scheduled
// date is sent as null; profit settings and allocations are embedded JSON
// strings like in full records.
func EncodePatch(p sfa.PaymentPatch) ([]byte, error) {
	m := map[string]any{}
	setIf(m, "isSameBilling", p.IsSameBilling)
	setIf(m, "revenueSourceId", p.RevenueSourceID)
	setIf(m, "revenueSourceName", p.RevenueSourceName)
	setIf(m, "billingType", p.BillingType)
	setIf(m, "isConfirmed", p.IsConfirmed)
	setIf(m, "probability", p.Probability)
	setIf(m, "amount", p.Amount)
	setIf(m, "recognitionDate", p.RecognitionDate)
	setIf(m, "memo", p.Memo)
	setIf(m, "isDeleted", p.IsDeleted)
	if p.ScheduledDate != nil {
		m["scheduledDate"] = nullIfEmpty(*p.ScheduledDate)
	}

	profit := map[string]any{}
	setIf(profit, "isProfit", p.IsProfit)
	setIf(profit, "marginProfitValue", p.MarginProfitValue)
	setIf(profit, "profitAmount", p.ProfitAmount)
	if len(profit) > 0 {
		data, err := Marshal(profit)
		if err != nil {
			return nil, err
		}
		m["profitConfig"] = string(data)
	}

	if p.TeamAllocations != nil {
		allocs, err := EncodeTeamAllocations(*p.TeamAllocations)
		if err != nil {
			return nil, err
		}
		m["teamAllocations"] = allocs
	}
	return Marshal(m)
}

// profitPatch is the partial form of the embedded profit settings
type profitPatch struct {
	IsProfit          *bool   `json:"isProfit"`
	MarginProfitValue *string `json:"marginProfitValue"`
	ProfitAmount      *int64  `json:"profitAmount"`
}

// patchRecord is the partial wire form of a payment
type patchRecord struct {
	IsSameBilling     *bool   `json:"isSameBilling"`
	RevenueSourceID   *string `json:"revenueSourceId"`
	RevenueSourceName *string `json:"revenueSourceName"`
	BillingType       *string `json:"billingType"`
	IsConfirmed       *bool   `json:"isConfirmed"`
	Probability       *string `json:"probability"`
	Amount            *string `json:"amount"`
	ProfitConfig      *string `json:"profitConfig"`
	RecognitionDate   *string `json:"recognitionDate"`
	Memo              *string `json:"memo"`
	TeamAllocations   *string `json:"teamAllocations"`
	IsDeleted         *bool   `json:"isDeleted"`
}

// DecodePatch parses a partial payment update. A present but null
// scheduled date clears it.
func DecodePatch(data []byte) (sfa.PaymentPatch, error) {
	var patch sfa.PaymentPatch

	camel, err := CamelJSON(data)
	if err != nil {
		return patch, invalidPayload(err)
	}
	var rec patchRecord
	if err := json.Unmarshal(camel, &rec); err != nil {
		return patch, invalidPayload(err)
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(camel, &present); err != nil {
		return patch, invalidPayload(err)
	}

	patch.IsSameBilling = rec.IsSameBilling
	patch.RevenueSourceID = rec.RevenueSourceID
	patch.RevenueSourceName = rec.RevenueSourceName
	patch.BillingType = rec.BillingType
	patch.IsConfirmed = rec.IsConfirmed
	patch.Probability = rec.Probability
	patch.Amount = rec.Amount
	patch.RecognitionDate = rec.RecognitionDate
	patch.Memo = rec.Memo
	patch.IsDeleted = rec.IsDeleted

	if raw, ok := present["scheduledDate"]; ok {
		var date *string
		if err := json.Unmarshal(raw, &date); err != nil {
			return patch, invalidPayload(err)
		}
		cleared := ""
		if date == nil {
			date = &cleared
		}
		patch.ScheduledDate = date
	}

	if rec.ProfitConfig != nil && *rec.ProfitConfig != "" {
		var pp profitPatch
		if err := Unmarshal([]byte(*rec.ProfitConfig), &pp); err != nil {
			return patch, invalidPayload(fmt.Errorf("decode profit config: %w", err))
		}
		patch.IsProfit = pp.IsProfit
		patch.MarginProfitValue = pp.MarginProfitValue
		patch.ProfitAmount = pp.ProfitAmount
	}

	if rec.TeamAllocations != nil {
		allocs, err := DecodeTeamAllocations(*rec.TeamAllocations)
		if err != nil {
			return patch, invalidPayload(err)
		}
		patch.TeamAllocations = &allocs
	}
	return patch, nil
}

func setIf[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func parseOptionalUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, invalidPayload(fmt.Errorf("invalid id %q: %w", s, err))
	}
	return id, nil
}

func invalidPayload(err error) error {
	return fmt.Errorf("%w: %v", shared.NewDomainError("INVALID_INPUT", "Malformed payload"), err)
}

// historyRecord is the wire form of a PaymentHistory row
type historyRecord struct {
	ID        string        `json:"id"`
	PaymentID string        `json:"paymentId"`
	Action    string        `json:"action"`
	Snapshot  paymentRecord `json:"snapshot"`
	CreatedAt time.Time     `json:"createdAt"`
}

// EncodeHistory renders a payment's change log
func EncodeHistory(rows []sfa.PaymentHistory) ([]byte, error) {
	recs := make([]historyRecord, len(rows))
	for i, h := range rows {
		snap, err := toPaymentRecord(h.Snapshot)
		if err != nil {
			return nil, err
		}
		recs[i] = historyRecord{
			ID:        h.ID.String(),
			PaymentID: h.PaymentID.String(),
			Action:    string(h.Action),
			Snapshot:  snap,
			CreatedAt: h.CreatedAt,
		}
	}
	return Marshal(recs)
}

// DecodeHistory parses a payment's change log
func DecodeHistory(data []byte) ([]sfa.PaymentHistory, error) {
	var recs []historyRecord
	if err := Unmarshal(data, &recs); err != nil {
		return nil, invalidPayload(err)
	}
	out := make([]sfa.PaymentHistory, len(recs))
	for i, rec := range recs {
		id, err := parseOptionalUUID(rec.ID)
		if err != nil {
			return nil, err
		}
		paymentID, err := parseOptionalUUID(rec.PaymentID)
		if err != nil {
			return nil, err
		}
		snap, err := fromPaymentRecord(rec.Snapshot)
		if err != nil {
			return nil, err
		}
		out[i] = sfa.PaymentHistory{
			ID:        id,
			PaymentID: paymentID,
			Action:    sfa.HistoryAction(rec.Action),
			Snapshot:  snap,
			CreatedAt: rec.CreatedAt,
		}
	}
	return out, nil
}
