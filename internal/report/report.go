package report

import (
	"fmt"
	"io"
	"time"

	"subscription-tracker/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"
)

// Period names the reported month, e.g. "2024-02".
func Period(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// RenderTable prints the month's payments with a totals footer.
func RenderTable(w io.Writer, rows []*models.PaymentWithSubscription, summary models.MonthSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Payments " + Period(summary.Year, time.Month(summary.Month)))
	t.AppendHeader(table.Row{"Due", "Subscription", "Category", "Amount", "Status", "Paid on"})

	for _, row := range rows {
		status := text.FgYellow.Sprint("DUE")
		paidOn := "-"
		if row.IsPaid {
			status = text.FgGreen.Sprint("PAID")
			if row.PaidDate != nil {
				paidOn = row.PaidDate.String()
			}
		}
		t.AppendRow(table.Row{
			row.DueDate.String(),
			row.SubscriptionName,
			stringOrDash(row.Category),
			row.AmountDue.StringFixed(2),
			status,
			paidOn,
		})
	}

	t.AppendFooter(table.Row{"", "", text.Bold.Sprint("Total"), text.Bold.Sprint(summary.TotalDue.StringFixed(2)), "", ""})
	t.AppendFooter(table.Row{"", "", "Paid", summary.TotalPaid.StringFixed(2), fmt.Sprintf("%d/%d", summary.PaidCount, summary.Count), ""})
	t.AppendFooter(table.Row{"", "", "Remaining", summary.Remaining.StringFixed(2), "", ""})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

// WriteXLSX writes a workbook with one sheet named after the period.
func WriteXLSX(w io.Writer, rows []*models.PaymentWithSubscription, summary models.MonthSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := Period(summary.Year, time.Month(summary.Month))
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []any{"Due date", "Subscription", "Category", "Amount due", "Paid", "Paid date"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		paidDate := ""
		if row.PaidDate != nil {
			paidDate = row.PaidDate.String()
		}
		amount, _ := row.AmountDue.Float64()
		values := []any{
			row.DueDate.String(),
			row.SubscriptionName,
			stringOrEmpty(row.Category),
			amount,
			row.IsPaid,
			paidDate,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	footer := len(rows) + 3
	totals := [][]any{
		{"Total", summary.TotalDue.StringFixed(2)},
		{"Paid", summary.TotalPaid.StringFixed(2)},
		{"Remaining", summary.Remaining.StringFixed(2)},
	}
	for i, values := range totals {
		cell, err := excelize.CoordinatesToCellName(3, footer+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing totals: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
