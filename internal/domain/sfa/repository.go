package sfa

import (
	"context"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/google/uuid"
)

// RevenueRepository defines the interface for revenue record persistence
type RevenueRepository interface {
	// Create stores a record together with its sales items and payments
	Create(ctx context.Context, record *RevenueRecord) error

	// FindByID finds a record with its sales items and non-deleted payments
	FindByID(ctx context.Context, id uuid.UUID) (*RevenueRecord, error)

	// Exists reports whether a record with id exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PaymentRepository defines the interface for payment entry persistence
type PaymentRepository interface {
	// FindByID finds a payment, including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentEntry, error)

	// FindByRevenue lists the non-deleted payments of a record in creation order
	FindByRevenue(ctx context.Context, revenueID uuid.UUID) ([]PaymentEntry, error)

	// Create stores a payment and appends a CREATED history row atomically
	Create(ctx context.Context, payment *PaymentEntry) error

	// Save updates a payment and appends a history row with action atomically
	Save(ctx context.Context, payment *PaymentEntry, action HistoryAction) error

	// History lists the change log of a payment, oldest first
	History(ctx context.Context, paymentID uuid.UUID) ([]PaymentHistory, error)
}

// Code is one entry of a code category (billing types, probability tiers)
type Code struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Sort     int    `json:"sort"`
}

// Team is a business unit that sales items and allocations refer to
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CodeRepository serves code lookups by category
type CodeRepository interface {
	FindByCategory(ctx context.Context, category string) ([]Code, error)
}

// TeamRepository serves the business unit list
type TeamRepository interface {
	FindAll(ctx context.Context) ([]Team, error)
}

// CustomerRepository serves customer and partner search
type CustomerRepository interface {
	Search(ctx context.Context, filter shared.Filter) ([]Customer, error)
}
