package interfaces

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	reporting "contract-ledger/internal/reporting/domain"
)

var raw = excelize.Options{RawCellValue: true}

func openArtifact(t *testing.T, artifact reporting.Artifact) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, raw)
	require.NoError(t, err)
	return v
}

func TestExportMatrix_SingleYearLayout(t *testing.T) {
	artifact, err := ExportMatrix(singleChargeMatrix(), reporting.ReportTitle(2024, 2024), 2024, 2024)
	require.NoError(t, err)

	assert.Equal(t, "Service_Total_2024.xlsx", artifact.Filename)
	assert.Equal(t, ContentTypeXLSX, artifact.ContentType)

	f := openArtifact(t, artifact)
	sheet := "Total 2024"
	assert.Equal(t, sheet, f.GetSheetName(0))
	assert.Equal(t, "Service Total for Year 2024", cellValue(t, f, sheet, "A1"))

	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "N1", merged[0].GetEndAxis())

	assert.Empty(t, cellValue(t, f, sheet, "A2"))
	assert.Equal(t, "Description", cellValue(t, f, sheet, "A3"))
	assert.Equal(t, "Jan 2024", cellValue(t, f, sheet, "B3"))
	assert.Equal(t, "Dec 2024", cellValue(t, f, sheet, "M3"))
	assert.Equal(t, "Total", cellValue(t, f, sheet, "N3"))

	assert.Equal(t, "Printer", cellValue(t, f, sheet, "A4"))
	assert.Equal(t, "On Warranty", cellValue(t, f, sheet, "B4"))
	assert.Equal(t, "-", cellValue(t, f, sheet, "C4"))
	assert.Equal(t, "500", cellValue(t, f, sheet, "D4"))
	assert.Equal(t, "500", cellValue(t, f, sheet, "N4"))

	assert.Equal(t, "Total", cellValue(t, f, sheet, "A5"))
	assert.Equal(t, "-", cellValue(t, f, sheet, "B5"))
	assert.Equal(t, "500", cellValue(t, f, sheet, "D5"))
	assert.Equal(t, "500", cellValue(t, f, sheet, "N5"))
}

func TestExportMatrix_Styles(t *testing.T) {
	artifact, err := ExportMatrix(singleChargeMatrix(), reporting.ReportTitle(2024, 2024), 2024, 2024)
	require.NoError(t, err)
	f := openArtifact(t, artifact)
	sheet := "Total 2024"

	titleStyle, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	title, err := f.GetStyle(titleStyle)
	require.NoError(t, err)
	require.NotNil(t, title.Font)
	assert.True(t, title.Font.Bold)
	assert.Equal(t, float64(16), title.Font.Size)
	assert.Equal(t, "center", title.Alignment.Horizontal)

	warrantyStyle, err := f.GetCellStyle(sheet, "B4")
	require.NoError(t, err)
	warranty, err := f.GetStyle(warrantyStyle)
	require.NoError(t, err)
	assert.Equal(t, "pattern", warranty.Fill.Type)
	require.NotEmpty(t, warranty.Fill.Color)

	moneyStyle, err := f.GetCellStyle(sheet, "D4")
	require.NoError(t, err)
	assert.NotZero(t, moneyStyle)
	assert.NotEqual(t, warrantyStyle, moneyStyle)

	// column A is sized by the title band
	width, err := f.GetColWidth(sheet, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Service Total for Year 2024")+2), width)

	width, err = f.GetColWidth(sheet, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(14), width)
}

func TestExportMatrix_MultiYearNames(t *testing.T) {
	matrix := reporting.BuildMatrix(nil, reporting.MonthsBetween(2023, 2024), nil, nil)

	artifact, err := ExportMatrix(matrix, reporting.ReportTitle(2023, 2024), 2023, 2024)
	require.NoError(t, err)

	assert.Equal(t, "Service_Total_2023-2024.xlsx", artifact.Filename)
	f := openArtifact(t, artifact)
	sheet := "Total 2023-2024"
	assert.Equal(t, "Service Total from 2023 – 2024", cellValue(t, f, sheet, "A1"))
	// zero rows: header then the total row
	assert.Equal(t, "Description", cellValue(t, f, sheet, "A3"))
	assert.Equal(t, "Total", cellValue(t, f, sheet, "A4"))
	assert.Equal(t, "0", cellValue(t, f, sheet, "Z4"))
}

func TestPDFExporter(t *testing.T) {
	matrix := singleChargeMatrix()

	artifact, err := BuildMatrixPDF(matrix, reporting.ReportTitle(2024, 2024), 2024, 2024)

	require.NoError(t, err)
	assert.Equal(t, "Service_Total_2024.pdf", artifact.Filename)
	assert.Equal(t, ContentTypePDF, artifact.ContentType)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF")))
}

func TestMonthBands(t *testing.T) {
	assert.Len(t, monthBands(nil), 1)
	bands := monthBands(reporting.MonthsBetween(2023, 2025))
	require.Len(t, bands, 3)
	assert.Equal(t, reporting.NewMonth(2024, 0), bands[1][0])
}
