package sfa

import (
	"context"
	"fmt"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RemoteStore is the resource API the orchestrator submits to
type RemoteStore interface {
	// CreateRevenue stores a record with its sales items and payments
	CreateRevenue(ctx context.Context, record *sfa.RevenueRecord) (*sfa.RevenueRecord, error)

	// ListPayments fetches the committed, non-deleted payments of a record
	ListPayments(ctx context.Context, revenueID uuid.UUID) ([]sfa.PaymentEntry, error)

	// CreatePayment stores one payment and records its history
	CreatePayment(ctx context.Context, payment sfa.PaymentEntry) (*sfa.PaymentEntry, error)

	// UpdatePayment applies patch to a stored payment; soft deletes use it too
	UpdatePayment(ctx context.Context, id uuid.UUID, patch sfa.PaymentPatch) (*sfa.PaymentEntry, error)
}

// CodeLookup serves code lists by category
type CodeLookup interface {
	Codes(ctx context.Context, category string) ([]sfa.Code, error)
}

// CustomerSearch finds customers and selling partners by name
type CustomerSearch interface {
	SearchCustomers(ctx context.Context, query string) ([]sfa.Customer, error)
}

// TeamLookup serves the business unit list
type TeamLookup interface {
	Teams(ctx context.Context) ([]sfa.Team, error)
}

// Notifier reports operation outcomes to the user
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// LogNotifier is a Notifier that writes to a zap logger
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier logging through logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify")}
}

// Success logs a success notice
func (n *LogNotifier) Success(title, description string) {
	n.logger.Info(title, zap.String("description", description))
}

// Error logs a failure notice
func (n *LogNotifier) Error(title, description string) {
	n.logger.Warn(title, zap.String("description", description))
}

// FormOptions are the lookup lists the payment form needs
type FormOptions struct {
	BillingTypes  []sfa.Code `json:"billingTypes"`
	Probabilities []sfa.Code `json:"probabilities"`
	Teams         []sfa.Team `json:"teams"`
}

// FormOptionsLoader fetches the form lookups
type FormOptionsLoader struct {
	codes CodeLookup
	teams TeamLookup
}

// NewFormOptionsLoader creates a loader over the given lookups
func NewFormOptionsLoader(codes CodeLookup, teams TeamLookup) *FormOptionsLoader {
	return &FormOptionsLoader{codes: codes, teams: teams}
}

// Load fetches billing types, probability tiers and teams concurrently.
// The first failure cancels the remaining lookups.
func (l *FormOptionsLoader) Load(ctx context.Context) (*FormOptions, error) {
	var opts FormOptions
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		codes, err := l.codes.Codes(gctx, sfa.CodeCategoryBillingType)
		if err != nil {
			return fmt.Errorf("load billing types: %w", err)
		}
		opts.BillingTypes = codes
		return nil
	})
	g.Go(func() error {
		codes, err := l.codes.Codes(gctx, sfa.CodeCategoryProbability)
		if err != nil {
			return fmt.Errorf("load probabilities: %w", err)
		}
		opts.Probabilities = codes
		return nil
	})
	g.Go(func() error {
		teams, err := l.teams.Teams(gctx)
		if err != nil {
			return fmt.Errorf("load teams: %w", err)
		}
		opts.Teams = teams
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &opts, nil
}
