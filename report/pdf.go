package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/jung-kurt/gofpdf"
)

// Page geometry in millimetres (A4 portrait).
const (
	pdfMargin       = 10.0
	pdfBottomMargin = 15.0
	pdfRowHeight    = 6.0
)

var (
	pdfPrimary = [3]int{33, 53, 85}
	pdfStripe  = [3]int{240, 243, 247}
)

var scheduleColumns = []struct {
	title string
	width float64
}{
	{"Month", 16}, {"Date", 26}, {"Principal", 32}, {"Interest", 32}, {"Prepayment", 32}, {"Balance", 52},
}

// PDF renders a loan report: title bar, summary table, amortization schedule.
func PDF(result *loan.Result, meta Meta) (*Document, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfBottomMargin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfBottomMargin + 3)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "L", false, 0, "")
	})
	pdf.AddPage()

	writeTitle(pdf, meta)
	writeSummary(pdf, result)
	writeSchedule(pdf, result)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return &Document{
		Data:        buf.Bytes(),
		Filename:    meta.filename("Loan-Report", "pdf"),
		ContentType: "application/pdf",
	}, nil
}

func writeTitle(pdf *gofpdf.Fpdf, meta Meta) {
	pageWidth, _ := pdf.GetPageSize()
	title := "Loan Report"
	if meta.ClientName != "" {
		title = "Loan Report for M/s " + meta.ClientName
	}

	pdf.SetFillColor(pdfPrimary[0], pdfPrimary[1], pdfPrimary[2])
	pdf.Rect(0, 0, pageWidth, 20, "F")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(0, 6)
	pdf.CellFormat(pageWidth, 8, title, "", 0, "C", false, 0, "")
	pdf.SetXY(pdfMargin, 28)
}

func writeSummary(pdf *gofpdf.Fpdf, result *loan.Result) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Loan Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetDrawColor(200, 200, 200)
	for _, kv := range summaryRows(result) {
		pdf.SetFillColor(pdfStripe[0], pdfStripe[1], pdfStripe[2])
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(90, pdfRowHeight+1, kv[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(100, pdfRowHeight+1, kv[1], "1", 1, "L", false, 0, "")
	}
	for _, notice := range result.Notices {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, notice, "", "L", false)
	}
	pdf.Ln(8)
}

func writeSchedule(pdf *gofpdf.Fpdf, result *loan.Result) {
	if len(result.MonthlySchedule) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Amortization Schedule (All amounts in INR)", "", 1, "L", false, 0, "")

	_, pageHeight := pdf.GetPageSize()
	writeScheduleHeader(pdf)
	pdf.SetFont("Helvetica", "", 8)
	for i, row := range result.MonthlySchedule {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfBottomMargin {
			pdf.AddPage()
			writeScheduleHeader(pdf)
			pdf.SetFont("Helvetica", "", 8)
		}
		fill := i%2 == 1
		pdf.SetFillColor(pdfStripe[0], pdfStripe[1], pdfStripe[2])
		pdf.SetTextColor(0, 0, 0)
		cells := []string{
			strconv.Itoa(row.Month),
			row.Date.Format("2006-01-02"),
			money(row.Principal),
			money(row.Interest),
			money(row.Prepayment),
			money(row.EndingBalance),
		}
		for c, text := range cells {
			align := "R"
			if c < 2 {
				align = "C"
			}
			pdf.CellFormat(scheduleColumns[c].width, pdfRowHeight, text, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeScheduleHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(pdfPrimary[0], pdfPrimary[1], pdfPrimary[2])
	pdf.SetTextColor(255, 255, 255)
	for _, col := range scheduleColumns {
		pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
