package models

import (
	"fmt"
	"time"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/infrastructure/sfawire"
	"github.com/google/uuid"
)

// RevenueModel is the persistence model for a revenue record
type RevenueModel struct {
	BaseModel
	Name           string           `gorm:"type:varchar(200);not null"`
	Classification string           `gorm:"type:varchar(50);not null"`
	SalesType      string           `gorm:"type:varchar(50);not null"`
	CustomerID     string           `gorm:"type:varchar(50);not null;index"`
	CustomerName   string           `gorm:"type:varchar(200)"`
	IsProject      bool             `gorm:"not null;default:false"`
	HasPartner     bool             `gorm:"not null;default:false"`
	PartnerID      string           `gorm:"type:varchar(50)"`
	PartnerName    string           `gorm:"type:varchar(200)"`
	IsMultiTeam    bool             `gorm:"not null;default:false"`
	Note           string           `gorm:"type:text"`
	SalesItems     []SalesItemModel `gorm:"foreignKey:RevenueID"`
}

// TableName returns the table name for GORM
func (RevenueModel) TableName() string {
	return "sfas"
}

// SalesItemModel is the persistence model for a sales item
type SalesItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RevenueID uuid.UUID `gorm:"column:sfa_id;type:uuid;not null;index"`
	Position  int       `gorm:"not null"`
	TeamID    string    `gorm:"type:varchar(50)"`
	TeamName  string    `gorm:"type:varchar(200)"`
	ItemID    string    `gorm:"type:varchar(50)"`
	ItemName  string    `gorm:"type:varchar(200)"`
	Amount    string    `gorm:"type:varchar(30);not null;default:'0'"`
}

// TableName returns the table name for GORM
func (SalesItemModel) TableName() string {
	return "sfa_sales_items"
}

// ToDomain converts the model to a domain sales item
func (m *SalesItemModel) ToDomain() sfa.SalesItem {
	return sfa.SalesItem{
		TeamID:   m.TeamID,
		TeamName: m.TeamName,
		ItemID:   m.ItemID,
		ItemName: m.ItemName,
		Amount:   m.Amount,
	}
}

// RevenueModelFromDomain converts a domain record to its model. Sales items
// get fresh ids and keep their list position; payments are stored separately.
func RevenueModelFromDomain(r *sfa.RevenueRecord) *RevenueModel {
	m := &RevenueModel{
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
		SalesItems:     make([]SalesItemModel, len(r.SalesItems)),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	for i, item := range r.SalesItems {
		m.SalesItems[i] = SalesItemModel{
			ID:        uuid.New(),
			RevenueID: r.ID,
			Position:  i,
			TeamID:    item.TeamID,
			TeamName:  item.TeamName,
			ItemID:    item.ItemID,
			ItemName:  item.ItemName,
			Amount:    item.Amount,
		}
	}
	return m
}

// ToDomain converts the model to a domain record without payments
func (m *RevenueModel) ToDomain() *sfa.RevenueRecord {
	r := &sfa.RevenueRecord{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		Classification: m.Classification,
		SalesType:      m.SalesType,
		CustomerID:     m.CustomerID,
		CustomerName:   m.CustomerName,
		IsProject:      m.IsProject,
		HasPartner:     m.HasPartner,
		PartnerID:      m.PartnerID,
		PartnerName:    m.PartnerName,
		IsMultiTeam:    m.IsMultiTeam,
		Note:           m.Note,
		SalesItems:     make([]sfa.SalesItem, len(m.SalesItems)),
		Payments:       []sfa.PaymentEntry{},
	}
	for i := range m.SalesItems {
		r.SalesItems[i] = m.SalesItems[i].ToDomain()
	}
	return r
}

// PaymentModel is the persistence model for a payment entry
type PaymentModel struct {
	BaseModel
	RevenueID         uuid.UUID `gorm:"column:sfa_id;type:uuid;not null;index"`
	IsSameBilling     bool      `gorm:"not null;default:false"`
	RevenueSourceID   string    `gorm:"type:varchar(50)"`
	RevenueSourceName string    `gorm:"type:varchar(200)"`
	BillingType       string    `gorm:"type:varchar(50);not null"`
	IsConfirmed       bool      `gorm:"not null;default:false"`
	Probability       string    `gorm:"type:varchar(20)"`
	Amount            string    `gorm:"type:varchar(30);not null;default:'0'"`
	ProfitConfig      string    `gorm:"type:text;not null"`
	RecognitionDate   string    `gorm:"type:varchar(10);not null"`
	ScheduledDate     *string   `gorm:"type:varchar(10)"`
	Memo              string    `gorm:"type:text"`
	TeamAllocations   *string   `gorm:"type:text"`
	IsDeleted         bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "sfa_payments"
}

// PaymentModelFromDomain converts a domain payment to its model
func PaymentModelFromDomain(p *sfa.PaymentEntry) (*PaymentModel, error) {
	profit, err := sfawire.EncodeProfitConfig(p.ProfitConfig())
	if err != nil {
		return nil, fmt.Errorf("encode profit config: %w", err)
	}
	m := &PaymentModel{
		RevenueID:         p.RevenueID,
		IsSameBilling:     p.IsSameBilling,
		RevenueSourceID:   p.RevenueSourceID,
		RevenueSourceName: p.RevenueSourceName,
		BillingType:       p.BillingType,
		IsConfirmed:       p.IsConfirmed,
		Probability:       p.Probability,
		Amount:            p.Amount,
		ProfitConfig:      profit,
		RecognitionDate:   p.RecognitionDate,
		Memo:              p.Memo,
		IsDeleted:         p.IsDeleted,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	if p.ScheduledDate != "" {
		date := p.ScheduledDate
		m.ScheduledDate = &date
	}
	if len(p.TeamAllocations) > 0 {
		allocs, err := sfawire.EncodeTeamAllocations(p.TeamAllocations)
		if err != nil {
			return nil, fmt.Errorf("encode team allocations: %w", err)
		}
		m.TeamAllocations = &allocs
	}
	return m, nil
}

// ToDomain converts the model to a domain payment
func (m *PaymentModel) ToDomain() (*sfa.PaymentEntry, error) {
	cfg, err := sfawire.DecodeProfitConfig(m.ProfitConfig)
	if err != nil {
		return nil, err
	}
	p := &sfa.PaymentEntry{
		BaseEntity:        m.BaseModel.ToDomain(),
		RevenueID:         m.RevenueID,
		IsSameBilling:     m.IsSameBilling,
		RevenueSourceID:   m.RevenueSourceID,
		RevenueSourceName: m.RevenueSourceName,
		BillingType:       m.BillingType,
		IsConfirmed:       m.IsConfirmed,
		Probability:       m.Probability,
		Amount:            m.Amount,
		RecognitionDate:   m.RecognitionDate,
		Memo:              m.Memo,
		IsDeleted:         m.IsDeleted,
		TeamAllocations:   []sfa.TeamAllocation{},
	}
	p.ApplyProfitConfig(cfg)
	if m.ScheduledDate != nil {
		p.ScheduledDate = *m.ScheduledDate
	}
	if m.TeamAllocations != nil {
		if p.TeamAllocations, err = sfawire.DecodeTeamAllocations(*m.TeamAllocations); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// PaymentHistoryModel is one change-log row of a payment. Snapshot holds
// the payment as it was after the change, in wire form.
type PaymentHistoryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action    string    `gorm:"type:varchar(20);not null"`
	Snapshot  string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentHistoryModel) TableName() string {
	return "sfa_payment_histories"
}

// NewPaymentHistoryModel snapshots p for action
func NewPaymentHistoryModel(p *sfa.PaymentEntry, action sfa.HistoryAction, at time.Time) (*PaymentHistoryModel, error) {
	snapshot, err := sfawire.EncodePayment(*p)
	if err != nil {
		return nil, fmt.Errorf("encode history snapshot: %w", err)
	}
	return &PaymentHistoryModel{
		ID:        uuid.New(),
		PaymentID: p.ID,
		Action:    string(action),
		Snapshot:  string(snapshot),
		CreatedAt: at,
	}, nil
}

// ToDomain converts the model to a domain history row
func (m *PaymentHistoryModel) ToDomain() (sfa.PaymentHistory, error) {
	snapshot, err := sfawire.DecodePayment([]byte(m.Snapshot))
	if err != nil {
		return sfa.PaymentHistory{}, err
	}
	return sfa.PaymentHistory{
		ID:        m.ID,
		PaymentID: m.PaymentID,
		Action:    sfa.HistoryAction(m.Action),
		Snapshot:  snapshot,
		CreatedAt: m.CreatedAt,
	}, nil
}
