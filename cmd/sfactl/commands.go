package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	sfaapp "github.com/erp/sfa/internal/application/sfa"
	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/infrastructure/sfaclient"
	"github.com/erp/sfa/internal/infrastructure/sfawire"
	infrastrategy "github.com/erp/sfa/internal/infrastructure/strategy"
	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errUsage = errors.New("invalid arguments")

type cli struct {
	client  *sfaclient.Client
	metrics *telemetry.SubmissionMetrics
	logger  *zap.Logger
	out     io.Writer
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "options":
		return c.options(ctx)
	case "show":
		return c.show(ctx, args)
	case "payments":
		return c.payments(ctx, args)
	case "add":
		return c.add(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "confirm":
		return c.confirm(ctx, args)
	case "history":
		return c.history(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (c *cli) options(ctx context.Context) error {
	opts, err := sfaapp.NewFormOptionsLoader(c.client, c.client).Load(ctx)
	if err != nil {
		return err
	}
	return c.print(opts)
}

func (c *cli) show(ctx context.Context, args []string) error {
	id, err := parseArgID(args, 0, "sfa-id")
	if err != nil {
		return err
	}
	record, err := c.client.GetRevenue(ctx, id)
	if err != nil {
		return err
	}
	data, err := sfawire.EncodeRevenue(record)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *cli) payments(ctx context.Context, args []string) error {
	id, err := parseArgID(args, 0, "sfa-id")
	if err != nil {
		return err
	}
	payments, err := c.client.ListPayments(ctx, id)
	if err != nil {
		return err
	}
	data, err := sfawire.EncodePayments(payments)
	if err != nil {
		return err
	}
	return c.write(data)
}

// addFlags are the payment fields accepted by the add command
type addFlags struct {
	billingType string
	amount      string
	margin      string
	isProfit    bool
	probability string
	confirmed   bool
	recognition string
	scheduled   string
	memo        string
	sameBilling bool
	split       string
}

func parseAddFlags(args []string) (addFlags, error) {
	var f addFlags
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringVar(&f.billingType, "billing", "", "Billing type code")
	fs.StringVar(&f.amount, "amount", "", "Payment amount (integer)")
	fs.StringVar(&f.margin, "margin", "", "Margin rate in percent, or the profit amount with -profit")
	fs.BoolVar(&f.isProfit, "profit", false, "Treat -margin as a profit amount")
	fs.StringVar(&f.probability, "probability", "", "Probability code")
	fs.BoolVar(&f.confirmed, "confirmed", false, "Mark the payment confirmed")
	fs.StringVar(&f.recognition, "date", "", "Recognition date (YYYY-MM-DD)")
	fs.StringVar(&f.scheduled, "scheduled", "", "Scheduled date (YYYY-MM-DD)")
	fs.StringVar(&f.memo, "memo", "", "Memo")
	fs.BoolVar(&f.sameBilling, "same-billing", true, "Bill the record's customer")
	fs.StringVar(&f.split, "split", "ratio", "Team allocation split for multi-team records: ratio or equal")
	if err := fs.Parse(args); err != nil {
		return f, fmt.Errorf("%w: %v", errUsage, err)
	}
	if f.split != "ratio" && f.split != "equal" {
		return f, fmt.Errorf("%w: -split must be ratio or equal", errUsage)
	}
	return f, nil
}

func (f addFlags) patch() sfa.PaymentPatch {
	p := sfa.PaymentPatch{
		BillingType:       &f.billingType,
		Amount:            &f.amount,
		IsProfit:          &f.isProfit,
		MarginProfitValue: &f.margin,
		IsConfirmed:       &f.confirmed,
		RecognitionDate:   &f.recognition,
	}
	if f.probability != "" {
		p.Probability = &f.probability
	}
	if f.scheduled != "" {
		p.ScheduledDate = &f.scheduled
	}
	if f.memo != "" {
		p.Memo = &f.memo
	}
	return p
}

func (c *cli) add(ctx context.Context, args []string) error {
	id, err := parseArgID(args, 0, "sfa-id")
	if err != nil {
		return err
	}
	f, err := parseAddFlags(args[1:])
	if err != nil {
		return err
	}

	store, orch, err := c.session(ctx, id)
	if err != nil {
		return err
	}
	record := store.Record()
	idx, err := store.AddDraftPayment(f.sameBilling, &sfa.Customer{ID: record.CustomerID, Name: record.CustomerName})
	if err != nil {
		return err
	}
	if err := store.UpdateDraftPayment(ctx, idx, f.patch()); err != nil {
		return err
	}
	if store.IsMultiTeam() {
		if f.split == "equal" {
			err = store.AllocateDraftEqually(ctx, idx)
		} else {
			err = store.AllocateDraftByRatio(ctx, idx)
		}
		if err != nil {
			return err
		}
	}

	result, err := orch.Add(ctx)
	if err != nil {
		return err
	}
	return c.print(result)
}

func (c *cli) delete(ctx context.Context, args []string) error {
	revenueID, err := parseArgID(args, 0, "sfa-id")
	if err != nil {
		return err
	}
	paymentID, err := parseArgID(args, 1, "payment-id")
	if err != nil {
		return err
	}
	_, orch, err := c.session(ctx, revenueID)
	if err != nil {
		return err
	}
	deleted, err := orch.Delete(ctx, paymentID)
	if err != nil {
		return err
	}
	data, err := sfawire.EncodePayment(*deleted)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *cli) confirm(ctx context.Context, args []string) error {
	revenueID, err := parseArgID(args, 0, "sfa-id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: at least one payment-id is required", errUsage)
	}
	ids := make([]uuid.UUID, 0, len(args)-1)
	for i := 1; i < len(args); i++ {
		id, err := parseArgID(args, i, "payment-id")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	_, orch, err := c.session(ctx, revenueID)
	if err != nil {
		return err
	}
	confirmed := true
	result, err := orch.BulkUpdate(ctx, ids, sfa.BulkPatch{IsConfirmed: &confirmed})
	if err != nil {
		return err
	}
	return c.print(result)
}

func (c *cli) history(ctx context.Context, args []string) error {
	id, err := parseArgID(args, 0, "payment-id")
	if err != nil {
		return err
	}
	rows, err := c.client.History(ctx, id)
	if err != nil {
		return err
	}
	data, err := sfawire.EncodeHistory(rows)
	if err != nil {
		return err
	}
	return c.write(data)
}

// session loads a record and builds the draft store and orchestrator over it
func (c *cli) session(ctx context.Context, revenueID uuid.UUID) (*sfaapp.DraftStore, *sfaapp.Orchestrator, error) {
	record, err := c.client.GetRevenue(ctx, revenueID)
	if err != nil {
		return nil, nil, err
	}
	registry, err := infrastrategy.NewRegistryWithDefaults()
	if err != nil {
		return nil, nil, err
	}
	store := sfaapp.NewDraftStore(record, registry, c.logger)
	orch := sfaapp.NewOrchestrator(store, c.client, sfaapp.NewLogNotifier(c.logger), c.logger)
	orch.SetSubmissionMetrics(c.metrics)
	return store, orch, nil
}

func (c *cli) print(v any) error {
	data, err := sfawire.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *cli) write(data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(c.out)
	return err
}

func parseArgID(args []string, i int, name string) (uuid.UUID, error) {
	if len(args) <= i {
		return uuid.Nil, fmt.Errorf("%w: %s is required", errUsage, name)
	}
	id, err := uuid.Parse(args[i])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s %q", errUsage, name, args[i])
	}
	return id, nil
}
