// Package reports renders a vendor's event list as a downloadable file.
package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

// EventRow is one exported line. Address and postcode are the effective
// values, so inherited vendor details appear instead of blanks.
type EventRow struct {
	Title    string
	Date     string
	Time     string
	Address  string
	Postcode string
}

var columns = []string{"Title", "Date", "Time", "Address", "Postcode"}

// Exporter renders event rows in a chosen format.
type Exporter interface {
	Export(format, vendorName string, rows []EventRow) (data []byte, filename string, contentType string, err error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

func (e *exporter) Export(format, vendorName string, rows []EventRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatExcel:
		data, err := e.exportExcel(vendorName, rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_%s.csv", timestamp), "text/csv", nil

	case FormatPDF:
		data, err := e.exportPDF(vendorName, rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func (e *exporter) exportCSV(rows []EventRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Title, row.Date, row.Time, row.Address, row.Postcode}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportExcel(vendorName string, rows []EventRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Events"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Events - %s", vendorName))
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, col)
	}
	for r, row := range rows {
		values := []string{row.Title, row.Date, row.Time, row.Address, row.Postcode}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+3)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportPDF(vendorName string, rows []EventRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Events - %s", vendorName))
	pdf.Ln(12)

	widths := []float64{70, 30, 35, 100, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		values := []string{row.Title, row.Date, row.Time, row.Address, row.Postcode}
		for i, v := range values {
			pdf.CellFormat(widths[i], 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
