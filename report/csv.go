package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/hrsagar28/loan-calculator-app/loan"
)

// CSVHeader is the column layout of the CSV export.
var CSVHeader = []string{
	"Month", "Date", "Beginning Balance", "EMI", "Principal",
	"Interest", "Prepayment", "Ending Balance",
}

// CSV renders the amortization schedule, one row per month.
func CSV(result *loan.Result, meta Meta) (*Document, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, row := range result.MonthlySchedule {
		record := []string{
			strconv.Itoa(row.Month),
			row.Date.Format("2006-01-02"),
			money(row.BeginningBalance),
			money(row.EMI),
			money(row.Principal),
			money(row.Interest),
			money(row.Prepayment),
			money(row.EndingBalance),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &Document{
		Data:        buf.Bytes(),
		Filename:    meta.filename("amortization_schedule", "csv"),
		ContentType: "text/csv; charset=utf-8",
	}, nil
}
