package interfaces

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"

	"contract-ledger/internal/config"
	reporting "contract-ledger/internal/reporting/domain"
)

// ContentTypePDF is the media type of printable exports.
const ContentTypePDF = "application/pdf"

const (
	pdfMonthsPerPage = 12
	pdfDescWidth     = 52.0
	pdfCellWidth     = 17.0
	pdfTotalWidth    = 22.0
	pdfRowHeight     = 6.0
)

// PDFExporter writes report matrices as landscape A4 documents, one page band per
// twelve months. The core PDF fonts lack the baht sign, so amounts use a currency code.
type PDFExporter struct {
	currency *CurrencyFormatter
}

// NewPDFExporter builds an exporter from profile.
func NewPDFExporter(profile config.ReportProfile) *PDFExporter {
	code := profile.PDFCurrency
	if code == "" {
		code = config.DefaultReportProfile().PDFCurrency
	}
	return &PDFExporter{currency: NewCurrencyFormatter(code+" ", language.Thai)}
}

// BuildMatrixPDF renders matrix with the default profile.
func BuildMatrixPDF(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error) {
	return NewPDFExporter(config.DefaultReportProfile()).Export(matrix, title, fromYear, toYear)
}

// Export renders the document in memory.
func (e *PDFExporter) Export(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)

	bands := monthBands(matrix.Months)
	for i, band := range bands {
		last := i == len(bands)-1
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "B", 7)
		pdf.CellFormat(pdfDescWidth, pdfRowHeight, "Description", "1", 0, "L", false, 0, "")
		for _, month := range band {
			pdf.CellFormat(pdfCellWidth, pdfRowHeight, month.Label(), "1", 0, "C", false, 0, "")
		}
		if last {
			pdf.CellFormat(pdfTotalWidth, pdfRowHeight, "Total", "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 7)
		for _, row := range matrix.Rows {
			pdf.CellFormat(pdfDescWidth, pdfRowHeight, row.Lineage.DeviceName(), "1", 0, "L", false, 0, "")
			for _, month := range band {
				cell := row.Cell(month)
				fill := cell.Kind == reporting.CellWarranty
				if fill {
					pdf.SetFillColor(255, 192, 0)
				}
				pdf.CellFormat(pdfCellWidth, pdfRowHeight, cellText(e.currency, cell), "1", 0, "R", fill, 0, "")
			}
			if last {
				pdf.CellFormat(pdfTotalWidth, pdfRowHeight, e.currency.Format(row.Total), "1", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Arial", "B", 7)
		pdf.CellFormat(pdfDescWidth, pdfRowHeight, "Total", "1", 0, "L", false, 0, "")
		for _, month := range band {
			pdf.CellFormat(pdfCellWidth, pdfRowHeight, amountOrDash(e.currency, matrix.ColumnTotal(month)), "1", 0, "R", false, 0, "")
		}
		if last {
			pdf.CellFormat(pdfTotalWidth, pdfRowHeight, e.currency.Format(matrix.GrandTotal()), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return reporting.Artifact{}, exportErr("write pdf", err)
	}
	return reporting.Artifact{
		Filename:    reporting.ExportFilename(fromYear, toYear, "pdf"),
		ContentType: ContentTypePDF,
		Data:        buf.Bytes(),
	}, nil
}

// monthBands splits months into page-sized bands; zero months still yield one band.
func monthBands(months []reporting.Month) [][]reporting.Month {
	if len(months) == 0 {
		return [][]reporting.Month{nil}
	}
	var bands [][]reporting.Month
	for start := 0; start < len(months); start += pdfMonthsPerPage {
		end := start + pdfMonthsPerPage
		if end > len(months) {
			end = len(months)
		}
		bands = append(bands, months[start:end])
	}
	return bands
}
