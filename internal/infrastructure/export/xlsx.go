// Package export renders payment listings as spreadsheets
package export

import (
	"fmt"
	"io"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/xuri/excelize/v2"
)

const (
	paymentsSheet    = "Payments"
	allocationsSheet = "Allocations"
)

var paymentHeaders = []any{
	"#", "Billing type", "Confirmed", "Probability", "Amount",
	"Profit basis", "Margin/profit value", "Profit amount",
	"Recognition date", "Scheduled date", "Revenue source", "Memo",
}

var allocationHeaders = []any{
	"Payment #", "Team", "Item", "Allocated amount", "Allocated profit",
}

// XLSXExporter writes payment listings as xlsx workbooks
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// WritePayments writes one row per payment. Multi-team records get a
// second sheet with one row per team allocation.
func (e *XLSXExporter) WritePayments(w io.Writer, record *sfa.RevenueRecord, payments []sfa.PaymentEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", paymentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: record.Name}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}
	if err := setRow(f, paymentsSheet, 1, paymentHeaders); err != nil {
		return err
	}

	for i, p := range payments {
		basis := "Margin %"
		if p.IsProfit {
			basis = "Profit amount"
		}
		row := []any{
			i + 1, p.BillingType, p.IsConfirmed, p.Probability, p.AmountValue(),
			basis, p.MarginProfitValue, p.ProfitAmount,
			p.RecognitionDate, p.ScheduledDate, p.RevenueSourceName, p.Memo,
		}
		if err := setRow(f, paymentsSheet, i+2, row); err != nil {
			return err
		}
	}

	if record.IsMultiTeam {
		if _, err := f.NewSheet(allocationsSheet); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		if err := setRow(f, allocationsSheet, 1, allocationHeaders); err != nil {
			return err
		}
		next := 2
		for i, p := range payments {
			for _, a := range p.TeamAllocations {
				row := []any{i + 1, a.TeamName, a.ItemName, a.AllocatedAmount, a.AllocatedProfitAmount}
				if err := setRow(f, allocationsSheet, next, row); err != nil {
					return err
				}
				next++
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
