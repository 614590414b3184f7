package sfa

import (
	"fmt"
	"strings"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/google/uuid"
)

// ItemFailure is one failed request of a batch
type ItemFailure struct {
	// Index is the draft position for adds, or the id position for bulk updates
	Index     int       `json:"index"`
	PaymentID uuid.UUID `json:"paymentId,omitempty"`
	Err       error     `json:"-"`
	Message   string    `json:"message"`
}

func newItemFailure(index int, id uuid.UUID, err error) ItemFailure {
	return ItemFailure{Index: index, PaymentID: id, Err: err, Message: err.Error()}
}

// BatchResult is the outcome of adding every draft payment
type BatchResult struct {
	Created      []sfa.PaymentEntry `json:"created"`
	SuccessCount int                `json:"successCount"`
	FailedCount  int                `json:"failedCount"`
	Failures     []ItemFailure      `json:"failures,omitempty"`
}

// Partial reports whether some but not all requests succeeded
func (r BatchResult) Partial() bool {
	return r.SuccessCount > 0 && r.FailedCount > 0
}

// BulkResult is the outcome of a bulk update
type BulkResult struct {
	SuccessCount int           `json:"successCount"`
	FailedCount  int           `json:"failedCount"`
	Failures     []ItemFailure `json:"failures,omitempty"`
}

// Partial reports whether some but not all requests succeeded
func (r BulkResult) Partial() bool {
	return r.SuccessCount > 0 && r.FailedCount > 0
}

// BatchError is returned when every request of a batch failed
type BatchError struct {
	Operation string
	Failures  []ItemFailure
}

// Error implements the error interface
func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("%s: all %d requests failed: %s", e.Operation, len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual request errors
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
