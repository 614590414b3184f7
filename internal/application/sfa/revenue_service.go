package sfa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const storeSpanService = "sfa_store"

// PaymentExporter renders a payment list as a spreadsheet
type PaymentExporter interface {
	WritePayments(w io.Writer, record *sfa.RevenueRecord, payments []sfa.PaymentEntry) error
}

// RevenueService is the server side of the remote store. It re-derives
// profit amounts and re-validates every payment before persisting.
type RevenueService struct {
	revenues  sfa.RevenueRepository
	payments  sfa.PaymentRepository
	codes     sfa.CodeRepository
	teams     sfa.TeamRepository
	customers sfa.CustomerRepository
	locker    shared.ResourceLocker
	lockCfg   shared.LockConfig
	exporter  PaymentExporter
	logger    *zap.Logger
}

// NewRevenueService creates a new RevenueService
func NewRevenueService(
	revenues sfa.RevenueRepository,
	payments sfa.PaymentRepository,
	codes sfa.CodeRepository,
	teams sfa.TeamRepository,
	customers sfa.CustomerRepository,
	logger *zap.Logger,
) *RevenueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevenueService{
		revenues:  revenues,
		payments:  payments,
		codes:     codes,
		teams:     teams,
		customers: customers,
		lockCfg:   shared.DefaultLockConfig(),
		logger:    logger,
	}
}

// SetLocker sets the locker serializing updates of one payment
func (s *RevenueService) SetLocker(locker shared.ResourceLocker, cfg shared.LockConfig) {
	s.locker = locker
	s.lockCfg = cfg
}

// SetExporter sets the spreadsheet exporter
func (s *RevenueService) SetExporter(exporter PaymentExporter) {
	s.exporter = exporter
}

// CreateRevenue stores a new record with its sales items and payments
func (s *RevenueService) CreateRevenue(ctx context.Context, record *sfa.RevenueRecord) (*sfa.RevenueRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, storeSpanService, "create_revenue",
		telemetry.SpanAttrDraftCount, len(record.Payments),
	)
	defer span.End()

	record.ID = uuid.New()
	now := time.Now()
	record.CreatedAt, record.UpdatedAt = now, now
	for i := range record.Payments {
		p := &record.Payments[i]
		p.ID = uuid.New()
		p.RevenueID = record.ID
		// listings order by created_at; keep the submitted order within one batch
		p.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		p.UpdatedAt = p.CreatedAt
		if err := normalizePayment(p, record.IsMultiTeam, true); err != nil {
			return nil, err
		}
	}

	if err := sfa.Validate(record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.revenues.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("revenue record created",
		zap.String("revenue_id", record.ID.String()),
		zap.Int("sales_items", len(record.SalesItems)),
		zap.Int("payments", len(record.Payments)),
	)
	return record, nil
}

// GetRevenue returns a record with its sales items and non-deleted payments
func (s *RevenueService) GetRevenue(ctx context.Context, id uuid.UUID) (*sfa.RevenueRecord, error) {
	return s.revenues.FindByID(ctx, id)
}

// ListPayments returns the non-deleted payments of a record
func (s *RevenueService) ListPayments(ctx context.Context, revenueID uuid.UUID) ([]sfa.PaymentEntry, error) {
	exists, err := s.revenues.Exists(ctx, revenueID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	return s.payments.FindByRevenue(ctx, revenueID)
}

// CreatePayment stores one payment against an existing record
func (s *RevenueService) CreatePayment(ctx context.Context, payment sfa.PaymentEntry) (*sfa.PaymentEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, storeSpanService, "create_payment",
		telemetry.SpanAttrRevenueID, payment.RevenueID.String(),
	)
	defer span.End()

	record, err := s.revenues.FindByID(ctx, payment.RevenueID)
	if err != nil {
		return nil, err
	}

	payment.ID = uuid.New()
	payment.IsDeleted = false
	now := time.Now()
	payment.CreatedAt, payment.UpdatedAt = now, now
	if err := normalizePayment(&payment, record.IsMultiTeam, true); err != nil {
		return nil, err
	}
	if err := validatePayment(payment, record.IsMultiTeam); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.payments.Create(ctx, &payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &payment, nil
}

// UpdatePayment applies patch to a stored payment and appends a history
// row. A patch that only sets IsDeleted is recorded as a deletion. Updates
// of the same payment are serialized through the locker; a concurrent
// update fails with shared.ErrLocked.
func (s *RevenueService) UpdatePayment(ctx context.Context, id uuid.UUID, patch sfa.PaymentPatch) (*sfa.PaymentEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, storeSpanService, "update_payment",
		telemetry.SpanAttrPaymentID, id.String(),
	)
	defer span.End()

	if patch.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_PATCH", "Nothing to update")
	}

	if s.locker != nil && s.lockCfg.Enabled {
		release, err := s.locker.Acquire(ctx, "payment:"+id.String(), s.lockCfg.TTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		defer release()
	}

	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsDeleted {
		return nil, shared.NewDomainError("PAYMENT_DELETED", "Payment has been deleted")
	}

	action := sfa.HistoryActionUpdated
	if patch.IsDeleted != nil && *patch.IsDeleted {
		action = sfa.HistoryActionDeleted
	}

	patch.Apply(payment)
	payment.UpdatedAt = time.Now()

	if action == sfa.HistoryActionUpdated {
		record, err := s.revenues.FindByID(ctx, payment.RevenueID)
		if err != nil {
			return nil, err
		}
		if err := normalizePayment(payment, record.IsMultiTeam, patch.TouchesAmount()); err != nil {
			return nil, err
		}
		if err := validatePayment(*payment, record.IsMultiTeam); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.payments.Save(ctx, payment, action); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment updated",
		zap.String("payment_id", id.String()),
		zap.String("action", string(action)),
	)
	return payment, nil
}

// History returns the change log of a payment
func (s *RevenueService) History(ctx context.Context, paymentID uuid.UUID) ([]sfa.PaymentHistory, error) {
	if _, err := s.payments.FindByID(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.payments.History(ctx, paymentID)
}

// ExportPayments writes the non-deleted payments of a record as xlsx
func (s *RevenueService) ExportPayments(ctx context.Context, revenueID uuid.UUID, w io.Writer) error {
	if s.exporter == nil {
		return shared.NewDomainError("EXPORT_UNAVAILABLE", "Export is not configured")
	}
	record, err := s.revenues.FindByID(ctx, revenueID)
	if err != nil {
		return err
	}
	return s.exporter.WritePayments(w, record, record.ActivePayments())
}

// Codes returns the codes of a category ordered by sort
func (s *RevenueService) Codes(ctx context.Context, category string) ([]sfa.Code, error) {
	return s.codes.FindByCategory(ctx, category)
}

// Teams returns every business unit
func (s *RevenueService) Teams(ctx context.Context) ([]sfa.Team, error) {
	return s.teams.FindAll(ctx)
}

// SearchCustomers finds customers whose name contains query
func (s *RevenueService) SearchCustomers(ctx context.Context, query string) ([]sfa.Customer, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.Search = strings.TrimSpace(query)
	return s.customers.Search(ctx, filter)
}

// normalizePayment enforces the derived fields the store owns: the forced
// probability of confirmed payments, the integer profit amount and, in
// single-team mode, the sole allocation following the amount.
func normalizePayment(p *sfa.PaymentEntry, multiTeam, syncSingleTeam bool) error {
	if p.IsConfirmed {
		p.Probability = sfa.ProbabilityConfirmed
	}
	if p.TeamAllocations == nil {
		p.TeamAllocations = []sfa.TeamAllocation{}
	}
	if !multiTeam && syncSingleTeam && len(p.TeamAllocations) == 1 {
		p.TeamAllocations[0].AllocatedAmount = p.AmountValue()
	}

	res, err := sfa.CalculateProfit(p.AmountValue(), p.MarginProfitValue, p.IsProfit)
	if err != nil {
		var derr *shared.DomainError
		if errors.As(err, &derr) {
			return validationError(derr.Message)
		}
		return fmt.Errorf("calculate profit: %w", err)
	}
	p.ProfitAmount = res.Amount
	return nil
}

func validatePayment(p sfa.PaymentEntry, multiTeam bool) error {
	return validationError(sfa.ValidatePayment(p, multiTeam)...)
}

func validationError(msgs ...string) error {
	verrs := sfa.NewValidationErrors()
	verrs.Add(sfa.GroupPayments, msgs...)
	return verrs.Err()
}
