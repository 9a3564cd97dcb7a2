/*
Package report renders a calculated loan as a downloadable document.

FORMATS:
  csv   amortization schedule only
  pdf   loan summary table + amortization schedule
  xlsx  Summary, Schedule and Fiscal Years sheets

  Every renderer is a read-only consumer of loan.Result. Amounts are rounded
  to 2 decimal places with banker's rounding (see Money) so totals printed in
  different formats agree.

USAGE:
  doc, err := report.Render(report.FormatPDF, result, report.Meta{ClientName: "Acme"})
  w.Header().Set("Content-Type", doc.ContentType)
  w.Write(doc.Data)
*/
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/shopspring/decimal"
)

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Meta carries presentation details that are not part of the calculation.
type Meta struct {
	ClientName  string
	GeneratedAt time.Time // defaults to now
}

func (m Meta) generatedAt() time.Time {
	if m.GeneratedAt.IsZero() {
		return time.Now()
	}
	return m.GeneratedAt
}

// filename builds "<prefix>-<client or General>-<date>.<ext>".
func (m Meta) filename(prefix, ext string) string {
	client := strings.ReplaceAll(strings.TrimSpace(m.ClientName), " ", "_")
	if client == "" {
		client = "General"
	}
	return fmt.Sprintf("%s-%s-%s.%s", prefix, client, m.generatedAt().Format("2006-01-02"), ext)
}

// Document is a rendered export.
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Render dispatches to the renderer for format.
func Render(format Format, result *loan.Result, meta Meta) (*Document, error) {
	if result == nil {
		return nil, errors.New("nothing to export: no calculation result")
	}
	switch format {
	case FormatCSV:
		return CSV(result, meta)
	case FormatPDF:
		return PDF(result, meta)
	case FormatXLSX:
		return XLSX(result, meta)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// =============================================================================
// AMOUNTS
// =============================================================================

// Money rounds a ledger amount to 2 decimal places, half to even.
func Money(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(2)
}

func money(v decimal.Decimal) string {
	return Money(v).StringFixed(2)
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).RoundBank(2).StringFixed(2) + "%"
}

func tenureText(months int) string {
	return fmt.Sprintf("%d years %d months", months/12, months%12)
}

// summaryRows is the loan summary shared by the PDF and XLSX renderers.
func summaryRows(r *loan.Result) [][2]string {
	rows := [][2]string{
		{"Loan Amount", money(r.Principal)},
		{"Interest Rate", percent(r.CalculatedRatePercent)},
		{"Loan Tenure", tenureText(len(r.MonthlySchedule))},
		{"Monthly EMI", money(r.CalculatedEMI)},
		{"Total Interest Payable", money(r.TotalInterest)},
		{"Total Payment (Principal + Interest)", money(r.TotalPayment)},
	}
	if r.MoratoriumMonths > 0 {
		rows = append(rows,
			[2]string{"Moratorium", fmt.Sprintf("%d months", r.MoratoriumMonths)},
			[2]string{"Capitalized Interest", money(r.CapitalizedInterest)},
		)
	}
	if r.InterestSaved.IsPositive() || r.TenureReducedMonths > 0 {
		rows = append(rows,
			[2]string{"Interest Saved by Prepayments", money(r.InterestSaved)},
			[2]string{"Tenure Reduced By", fmt.Sprintf("%d months", r.TenureReducedMonths)},
		)
	}
	for _, row := range r.MonthlySchedule {
		if !row.Moratorium {
			rows = append(rows,
				[2]string{"First Installment Date", row.Date.Format("02/01/2006")},
				[2]string{"Loan End Date", r.LoanEndDate.Format("02/01/2006")},
			)
			break
		}
	}
	return rows
}
