package report

import (
	"fmt"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX export.
const (
	SheetSummary     = "Summary"
	SheetSchedule    = "Schedule"
	SheetFiscalYears = "Fiscal Years"
)

// XLSX renders a workbook with Summary, Schedule and Fiscal Years sheets.
// Amounts are written as numbers so the workbook stays usable for analysis.
func XLSX(result *loan.Result, meta Meta) (*Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetSchedule, SheetFiscalYears} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, result, meta, headerStyle); err != nil {
		return nil, err
	}
	if err := writeScheduleSheet(f, result, headerStyle); err != nil {
		return nil, err
	}
	if err := writeFiscalSheet(f, result, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render XLSX: %w", err)
	}
	return &Document{
		Data:        buf.Bytes(),
		Filename:    meta.filename("Loan-Report", "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

func writeSummarySheet(f *excelize.File, result *loan.Result, meta Meta, headerStyle int) error {
	title := "Loan Report"
	if meta.ClientName != "" {
		title = "Loan Report for M/s " + meta.ClientName
	}
	if err := f.SetCellValue(SheetSummary, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A1", headerStyle); err != nil {
		return err
	}
	for i, kv := range summaryRows(result) {
		row := []any{kv[0], kv[1]}
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+3), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 38)
}

func writeScheduleSheet(f *excelize.File, result *loan.Result, headerStyle int) error {
	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetSchedule, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSchedule, "A1", "H1", headerStyle); err != nil {
		return err
	}

	for i, r := range result.MonthlySchedule {
		row := []any{
			r.Month,
			r.Date.Format("2006-01-02"),
			Money(r.BeginningBalance).InexactFloat64(),
			Money(r.EMI).InexactFloat64(),
			Money(r.Principal).InexactFloat64(),
			Money(r.Interest).InexactFloat64(),
			Money(r.Prepayment).InexactFloat64(),
			Money(r.EndingBalance).InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSchedule, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSchedule, "A", "H", 16)
}

func writeFiscalSheet(f *excelize.File, result *loan.Result, headerStyle int) error {
	header := []any{"Financial Year", "Principal", "Interest", "Prepayment", "Closing Balance"}
	if err := f.SetSheetRow(SheetFiscalYears, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetFiscalYears, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for i, b := range result.FinancialYears {
		row := []any{
			b.Label,
			Money(b.Principal).InexactFloat64(),
			Money(b.Interest).InexactFloat64(),
			Money(b.Prepayment).InexactFloat64(),
			Money(b.ClosingBalance).InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetFiscalYears, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetFiscalYears, "A", "E", 18)
}
