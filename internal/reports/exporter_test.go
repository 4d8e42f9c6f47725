package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []EventRow {
	return []EventRow{
		{Title: "Open mic", Date: "2026-09-05", Time: "7pm til late", Address: "12 High Street", Postcode: "AB12CD"},
		{Title: "Market day", Date: "2026-09-12", Time: "9am", Address: "99 Other Road", Postcode: "ZZ99XY"},
	}
}

func TestExportCSV(t *testing.T) {
	data, filename, contentType, err := NewExporter().Export(FormatCSV, "The Corner Cafe", sampleRows())
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Title", "Date", "Time", "Address", "Postcode"}, records[0])
	assert.Equal(t, "Open mic", records[1][0])
	assert.Equal(t, "ZZ99XY", records[2][4])
}

func TestExportExcel(t *testing.T) {
	data, filename, contentType, err := NewExporter().Export(FormatExcel, "The Corner Cafe", sampleRows())
	require.NoError(t, err)

	assert.Contains(t, contentType, "spreadsheetml")
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Events", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Events - The Corner Cafe", title)

	header, err := f.GetCellValue("Events", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Title", header)

	postcode, err := f.GetCellValue("Events", "E4")
	require.NoError(t, err)
	assert.Equal(t, "ZZ99XY", postcode)
}

func TestExportPDF(t *testing.T) {
	data, filename, contentType, err := NewExporter().Export(FormatPDF, "The Corner Cafe", sampleRows())
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, _, _, err := NewExporter().Export("docx", "The Corner Cafe", nil)
	assert.Error(t, err)
}

func TestExportEmptyRows(t *testing.T) {
	data, _, _, err := NewExporter().Export(FormatCSV, "The Corner Cafe", nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
