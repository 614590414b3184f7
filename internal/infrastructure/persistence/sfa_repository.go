package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRevenueRepository implements sfa.RevenueRepository using GORM
type GormRevenueRepository struct {
	db *gorm.DB
}

// NewGormRevenueRepository creates a new GormRevenueRepository
func NewGormRevenueRepository(db *gorm.DB) *GormRevenueRepository {
	return &GormRevenueRepository{db: db}
}

// Create stores a record, its sales items and its payments in one
// transaction. Every payment gets a CREATED history row.
func (r *GormRevenueRepository) Create(ctx context.Context, record *sfa.RevenueRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.RevenueModelFromDomain(record)
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("create revenue: %w", err)
		}
		for i := range record.Payments {
			if err := createPayment(tx, &record.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a record with its sales items and non-deleted payments
func (r *GormRevenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*sfa.RevenueRecord, error) {
	var model models.RevenueModel
	err := r.db.WithContext(ctx).
		Preload("SalesItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	record := model.ToDomain()
	payments, err := findActivePayments(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	record.Payments = payments
	return record, nil
}

// Exists reports whether a record with id exists
func (r *GormRevenueRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RevenueModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormPaymentRepository implements sfa.PaymentRepository using GORM
type GormPaymentRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db, now: time.Now}
}

// FindByID finds a payment, including soft-deleted ones
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*sfa.PaymentEntry, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByRevenue lists the non-deleted payments of a record in creation order
func (r *GormPaymentRepository) FindByRevenue(ctx context.Context, revenueID uuid.UUID) ([]sfa.PaymentEntry, error) {
	return findActivePayments(r.db.WithContext(ctx), revenueID)
}

// Create stores a payment and appends a CREATED history row atomically
func (r *GormPaymentRepository) Create(ctx context.Context, payment *sfa.PaymentEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createPayment(tx, payment)
	})
}

// Save writes every column of a payment and appends a history row with
// action atomically
func (r *GormPaymentRepository) Save(ctx context.Context, payment *sfa.PaymentEntry, action sfa.HistoryAction) error {
	model, err := models.PaymentModelFromDomain(payment)
	if err != nil {
		return err
	}
	history, err := models.NewPaymentHistoryModel(payment, action, r.now())
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentModel{}).
			Where("id = ?", model.ID).
			Select("*").
			Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return fmt.Errorf("update payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("append payment history: %w", err)
		}
		return nil
	})
}

// History lists the change log of a payment, oldest first
func (r *GormPaymentRepository) History(ctx context.Context, paymentID uuid.UUID) ([]sfa.PaymentHistory, error) {
	var rows []models.PaymentHistoryModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]sfa.PaymentHistory, 0, len(rows))
	for i := range rows {
		h, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func createPayment(tx *gorm.DB, payment *sfa.PaymentEntry) error {
	model, err := models.PaymentModelFromDomain(payment)
	if err != nil {
		return err
	}
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	history, err := models.NewPaymentHistoryModel(payment, sfa.HistoryActionCreated, model.CreatedAt)
	if err != nil {
		return err
	}
	if err := tx.Create(history).Error; err != nil {
		return fmt.Errorf("append payment history: %w", err)
	}
	return nil
}

func findActivePayments(db *gorm.DB, revenueID uuid.UUID) ([]sfa.PaymentEntry, error) {
	var rows []models.PaymentModel
	if err := db.
		Where("sfa_id = ? AND is_deleted = ?", revenueID, false).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]sfa.PaymentEntry, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
