package sfa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const orchestratorSpanService = "sfa_submission"

// Operation names used in spans, metrics and batch errors
const (
	OpAdd        = "add"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpBulkUpdate = "bulk_update"
	OpCreate     = "create_revenue"
)

// Orchestrator errors
var (
	ErrNoDrafts     = shared.NewDomainError("NO_DRAFTS", "There are no draft payments to submit")
	ErrSingleDraft  = shared.NewDomainError("INVALID_DRAFT", "Update requires exactly one draft selected from the committed payments")
	ErrEmptyPatch   = shared.NewDomainError("EMPTY_PATCH", "Bulk update needs at least one field to change")
	ErrNoPaymentIDs = shared.NewDomainError("NO_PAYMENT_IDS", "Bulk update needs at least one payment id")
)

// SubmitOptions controls CreateRevenue
type SubmitOptions struct {
	// AmountMismatchConfirmed is set once the user confirmed that the sales
	// item total may differ from the payment total
	AmountMismatchConfirmed bool
}

// Orchestrator turns validated drafts into remote store requests and
// accounts for every request's outcome
type Orchestrator struct {
	store      *DraftStore
	remote     RemoteStore
	notifier   Notifier
	logger     *zap.Logger
	metrics    *telemetry.SubmissionMetrics
	flights    singleflight.Group
	submitting atomic.Int32
}

// NewOrchestrator creates an orchestrator for the record held by store
func NewOrchestrator(store *DraftStore, remote RemoteStore, notifier Notifier, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Orchestrator{
		store:    store,
		remote:   remote,
		notifier: notifier,
		logger:   logger,
	}
}

// SetSubmissionMetrics sets the submission metrics recorder
func (o *Orchestrator) SetSubmissionMetrics(m *telemetry.SubmissionMetrics) {
	o.metrics = m
}

// IsSubmitting reports whether any submission is in flight. It is advisory
// and meant to disable repeated submit actions.
func (o *Orchestrator) IsSubmitting() bool {
	return o.submitting.Load() > 0
}

func (o *Orchestrator) begin() func() {
	o.submitting.Add(1)
	return func() { o.submitting.Add(-1) }
}

// flightKey identifies one operation on one record for singleflight
func (o *Orchestrator) flightKey(op string, parts ...string) string {
	key := op + ":" + o.store.RevenueID().String()
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Add submits every draft payment concurrently, one request each. Created
// drafts leave the draft list so a retry only resubmits the failures. An
// error is returned for invalid drafts and when every request failed;
// partial failure is reported through the result only.
func (o *Orchestrator) Add(ctx context.Context) (*BatchResult, error) {
	v, err, dup := o.flights.Do(o.flightKey(OpAdd), func() (interface{}, error) {
		return o.add(ctx)
	})
	if dup {
		o.logger.Debug("add collapsed into in-flight submission")
	}
	res, _ := v.(*BatchResult)
	return res, err
}

func (o *Orchestrator) add(ctx context.Context) (*BatchResult, error) {
	defer o.begin()()
	start := time.Now()

	revenueID := o.store.RevenueID()
	drafts, keys := o.store.snapshotDrafts()

	ctx, span := telemetry.StartServiceSpan(ctx, orchestratorSpanService, OpAdd,
		telemetry.SpanAttrRevenueID, revenueID.String(),
		telemetry.SpanAttrDraftCount, len(drafts),
	)
	defer span.End()

	if len(drafts) == 0 {
		return nil, ErrNoDrafts
	}
	if err := validateDrafts(drafts, o.store.IsMultiTeam()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	type outcome struct {
		created *sfa.PaymentEntry
		err     error
	}
	outcomes := make([]outcome, len(drafts))

	var wg sync.WaitGroup
	for i, draft := range drafts {
		draft.RevenueID = revenueID
		wg.Add(1)
		go func(i int, draft sfa.PaymentEntry) {
			defer wg.Done()
			created, err := o.remote.CreatePayment(ctx, draft)
			outcomes[i] = outcome{created: created, err: err}
		}(i, draft)
	}
	wg.Wait()

	res := &BatchResult{Created: []sfa.PaymentEntry{}}
	var createdKeys []uuid.UUID
	for i, out := range outcomes {
		if out.err != nil {
			res.Failures = append(res.Failures, newItemFailure(i, uuid.Nil, out.err))
			continue
		}
		createdKeys = append(createdKeys, keys[i])
		if out.created != nil {
			res.Created = append(res.Created, *out.created)
		}
	}
	res.SuccessCount = len(createdKeys)
	res.FailedCount = len(res.Failures)

	// drafts may have been edited while the requests were in flight
	o.store.removeDraftsByKey(createdKeys)
	if res.SuccessCount > 0 {
		o.refreshCommitted(ctx, revenueID)
	}

	o.finishBatch(ctx, span, OpAdd, res.SuccessCount, res.FailedCount, start)

	switch {
	case res.FailedCount == 0:
		o.notifier.Success("Payments added", fmt.Sprintf("%d payment(s) added", res.SuccessCount))
	case res.SuccessCount == 0:
		err := &BatchError{Operation: OpAdd, Failures: res.Failures}
		o.notifier.Error("Failed to add payments", err.Error())
		telemetry.RecordError(span, err)
		return res, err
	default:
		o.notifier.Error("Some payments were not added",
			fmt.Sprintf("%d succeeded, %d failed", res.SuccessCount, res.FailedCount))
	}
	return res, nil
}

// Update submits the single draft selected for edit. On failure the draft
// is left as it was so the user can retry.
func (o *Orchestrator) Update(ctx context.Context) (*sfa.PaymentEntry, error) {
	drafts := o.store.Drafts()
	if len(drafts) != 1 || drafts[0].ID == uuid.Nil {
		return nil, ErrSingleDraft
	}
	v, err, _ := o.flights.Do(o.flightKey(OpUpdate, drafts[0].ID.String()), func() (interface{}, error) {
		return o.update(ctx, drafts[0])
	})
	p, _ := v.(*sfa.PaymentEntry)
	return p, err
}

func (o *Orchestrator) update(ctx context.Context, draft sfa.PaymentEntry) (*sfa.PaymentEntry, error) {
	defer o.begin()()
	start := time.Now()

	ctx, span := telemetry.StartServiceSpan(ctx, orchestratorSpanService, OpUpdate,
		telemetry.SpanAttrRevenueID, o.store.RevenueID().String(),
		telemetry.SpanAttrPaymentID, draft.ID.String(),
	)
	defer span.End()

	if err := validateDrafts([]sfa.PaymentEntry{draft}, o.store.IsMultiTeam()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	updated, err := o.remote.UpdatePayment(ctx, draft.ID, sfa.PatchFromEntry(draft))
	if err != nil {
		o.finishBatch(ctx, span, OpUpdate, 0, 1, start)
		telemetry.RecordError(span, err)
		o.notifier.Error("Failed to update payment", err.Error())
		return nil, fmt.Errorf("update payment %s: %w", draft.ID, err)
	}

	o.refreshCommitted(ctx, o.store.RevenueID())
	o.store.ResetDrafts()
	o.finishBatch(ctx, span, OpUpdate, 1, 0, start)
	o.notifier.Success("Payment updated", "")
	return updated, nil
}

// Delete soft-deletes a committed payment by marking it deleted. Amount and
// allocation fields are not sent.
func (o *Orchestrator) Delete(ctx context.Context, paymentID uuid.UUID) (*sfa.PaymentEntry, error) {
	v, err, _ := o.flights.Do(o.flightKey(OpDelete, paymentID.String()), func() (interface{}, error) {
		return o.delete(ctx, paymentID)
	})
	p, _ := v.(*sfa.PaymentEntry)
	return p, err
}

func (o *Orchestrator) delete(ctx context.Context, paymentID uuid.UUID) (*sfa.PaymentEntry, error) {
	defer o.begin()()
	start := time.Now()

	ctx, span := telemetry.StartServiceSpan(ctx, orchestratorSpanService, OpDelete,
		telemetry.SpanAttrRevenueID, o.store.RevenueID().String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)
	defer span.End()

	deleted, err := o.remote.UpdatePayment(ctx, paymentID, sfa.SoftDeletePatch())
	if err != nil {
		o.finishBatch(ctx, span, OpDelete, 0, 1, start)
		telemetry.RecordError(span, err)
		o.notifier.Error("Failed to delete payment", err.Error())
		return nil, fmt.Errorf("delete payment %s: %w", paymentID, err)
	}

	o.refreshCommitted(ctx, o.store.RevenueID())
	if drafts := o.store.Drafts(); len(drafts) == 1 && drafts[0].ID == paymentID {
		o.store.ResetDrafts()
	}
	o.finishBatch(ctx, span, OpDelete, 1, 0, start)
	o.notifier.Success("Payment deleted", "")
	return deleted, nil
}

// BulkUpdate applies patch to every payment id with one request per id, in
// parallel. It only returns an error when the input is unusable or every
// request failed; partial failure is reported through the counts.
func (o *Orchestrator) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch sfa.BulkPatch) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoPaymentIDs
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.RecognitionDate != nil {
		if _, err := time.Parse(sfa.DateLayout, *patch.RecognitionDate); err != nil {
			return nil, shared.NewDomainError("INVALID_DATE", "Recognition date must be YYYY-MM-DD")
		}
	}

	defer o.begin()()
	start := time.Now()

	ctx, span := telemetry.StartServiceSpan(ctx, orchestratorSpanService, OpBulkUpdate,
		telemetry.SpanAttrRequestCount, len(ids),
	)
	defer span.End()

	wirePatch := patch.ToPaymentPatch()
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = o.remote.UpdatePayment(ctx, id, wirePatch)
		}(i, id)
	}
	wg.Wait()

	res := &BulkResult{}
	committed := make(map[uuid.UUID]bool)
	for _, p := range o.store.Committed() {
		committed[p.ID] = true
	}
	touchedCommitted := false
	for i, err := range errs {
		if err != nil {
			res.Failures = append(res.Failures, newItemFailure(i, ids[i], err))
			continue
		}
		res.SuccessCount++
		if committed[ids[i]] {
			touchedCommitted = true
		}
	}
	res.FailedCount = len(res.Failures)

	if touchedCommitted {
		o.refreshCommitted(ctx, o.store.RevenueID())
	}
	o.finishBatch(ctx, span, OpBulkUpdate, res.SuccessCount, res.FailedCount, start)

	switch {
	case res.FailedCount == 0:
		o.notifier.Success("Payments updated", fmt.Sprintf("%d payment(s) updated", res.SuccessCount))
	case res.SuccessCount == 0:
		err := &BatchError{Operation: OpBulkUpdate, Failures: res.Failures}
		o.notifier.Error("Failed to update payments", err.Error())
		telemetry.RecordError(span, err)
		return res, err
	default:
		o.notifier.Error("Some payments were not updated",
			fmt.Sprintf("%d succeeded, %d failed", res.SuccessCount, res.FailedCount))
	}
	return res, nil
}

// CreateRevenue validates and stores a whole record. When the sales item
// total differs from the payment total ErrAmountMismatch is returned until
// the caller confirms with opts.AmountMismatchConfirmed.
func (o *Orchestrator) CreateRevenue(ctx context.Context, record *sfa.RevenueRecord, opts SubmitOptions) (*sfa.RevenueRecord, error) {
	defer o.begin()()
	start := time.Now()

	ctx, span := telemetry.StartServiceSpan(ctx, orchestratorSpanService, OpCreate,
		telemetry.SpanAttrDraftCount, len(record.Payments),
	)
	defer span.End()

	if err := sfa.Validate(record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !opts.AmountMismatchConfirmed && !sfa.CheckAmounts(record.SalesItems, record.ActivePayments()) {
		return nil, sfa.ErrAmountMismatch
	}

	created, err := o.remote.CreateRevenue(ctx, record)
	if err != nil {
		o.finishBatch(ctx, span, OpCreate, 0, 1, start)
		telemetry.RecordError(span, err)
		o.notifier.Error("Failed to register revenue", err.Error())
		return nil, fmt.Errorf("create revenue: %w", err)
	}

	o.finishBatch(ctx, span, OpCreate, 1, 0, start)
	o.notifier.Success("Revenue registered", record.Name)
	return created, nil
}

// refreshCommitted replaces the committed list with the stored payments.
// A failed refetch keeps the previous list.
func (o *Orchestrator) refreshCommitted(ctx context.Context, revenueID uuid.UUID) {
	payments, err := o.remote.ListPayments(ctx, revenueID)
	if err != nil {
		o.logger.Warn("failed to refresh committed payments",
			zap.String("revenue_id", revenueID.String()),
			zap.Error(err),
		)
		return
	}
	o.store.ReplaceCommitted(payments)
}

func (o *Orchestrator) finishBatch(ctx context.Context, span trace.Span, op string, succeeded, failed int, start time.Time) {
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSuccessCount, succeeded,
		telemetry.SpanAttrFailedCount, failed,
	)
	o.metrics.Record(ctx, op, succeeded, failed, time.Since(start))
	o.logger.Info("submission finished",
		zap.String("operation", op),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// validateDrafts runs the payment checks over drafts and groups the
// failures under the payments section
func validateDrafts(drafts []sfa.PaymentEntry, multiTeam bool) error {
	verrs := sfa.NewValidationErrors()
	verrs.Add(sfa.GroupPayments, sfa.ValidatePayments(drafts, multiTeam)...)
	return verrs.Err()
}

// IsBatchError reports whether err is a total batch failure
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}
