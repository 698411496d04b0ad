package interfaces

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"contract-ledger/internal/config"
	reporting "contract-ledger/internal/reporting/domain"
)

// ContentTypeXLSX is the media type of workbook exports.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	titleRow  = 1
	headerRow = 3
	firstRow  = 4
)

// WorkbookExporter writes report matrices as single-sheet workbooks.
type WorkbookExporter struct {
	profile  config.ReportProfile
	currency *CurrencyFormatter
}

// NewWorkbookExporter builds an exporter; blank profile fields take the defaults.
func NewWorkbookExporter(profile config.ReportProfile) *WorkbookExporter {
	defaults := config.DefaultReportProfile()
	if profile.CurrencyFormat == "" {
		profile.CurrencyFormat = defaults.CurrencyFormat
	}
	if profile.WarrantyFill == "" {
		profile.WarrantyFill = defaults.WarrantyFill
	}
	if profile.MinColumnWidth <= 0 {
		profile.MinColumnWidth = defaults.MinColumnWidth
	}
	if profile.ColumnPadding <= 0 {
		profile.ColumnPadding = defaults.ColumnPadding
	}
	if profile.CurrencySymbol == "" {
		profile.CurrencySymbol = defaults.CurrencySymbol
	}
	return &WorkbookExporter{
		profile:  profile,
		currency: NewCurrencyFormatter(profile.CurrencySymbol, language.Thai),
	}
}

// ExportMatrix writes matrix with the default profile.
func ExportMatrix(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error) {
	return NewWorkbookExporter(config.DefaultReportProfile()).Export(matrix, title, fromYear, toYear)
}

type workbookStyles struct {
	title, header, money, warranty, totalLabel, totalMoney int
}

// Export renders the workbook fully in memory; no bytes are returned on failure.
func (e *WorkbookExporter) Export(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := reporting.SheetName(fromYear, toYear)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return reporting.Artifact{}, exportErr("rename sheet", err)
	}
	styles, err := e.newStyles(f)
	if err != nil {
		return reporting.Artifact{}, exportErr("styles", err)
	}

	lastCol := len(matrix.Months) + 2
	widths := make([]int, lastCol+1)
	w := sheetWriter{f: f, sheet: sheet, widths: widths}

	// title band
	w.set(1, titleRow, title, styles.title, true)
	if lastCol > 1 {
		end, _ := excelize.CoordinatesToCellName(lastCol, titleRow)
		if err := f.MergeCell(sheet, "A1", end); err != nil {
			return reporting.Artifact{}, exportErr("merge title", err)
		}
	}

	w.set(1, headerRow, "Description", styles.header, true)
	for i, month := range matrix.Months {
		w.set(i+2, headerRow, month.Label(), styles.header, true)
	}
	w.set(lastCol, headerRow, "Total", styles.header, true)

	row := firstRow
	for _, r := range matrix.Rows {
		w.set(1, row, r.Lineage.DeviceName(), 0, true)
		for i, month := range matrix.Months {
			cell := r.Cell(month)
			switch cell.Kind {
			case reporting.CellCharged:
				w.amount(i+2, row, cell.Amount.InexactFloat64(), e.currency.Format(cell.Amount), styles.money)
			case reporting.CellWarranty:
				w.set(i+2, row, warrantyText, styles.warranty, true)
			default:
				w.set(i+2, row, emptyCell, 0, true)
			}
		}
		w.amount(lastCol, row, r.Total.InexactFloat64(), e.currency.Format(r.Total), styles.money)
		row++
	}

	w.set(1, row, "Total", styles.totalLabel, true)
	for i, month := range matrix.Months {
		total := matrix.ColumnTotal(month)
		if total.IsZero() {
			w.set(i+2, row, emptyCell, styles.totalLabel, true)
			continue
		}
		w.amount(i+2, row, total.InexactFloat64(), e.currency.Format(total), styles.totalMoney)
	}
	grand := matrix.GrandTotal()
	w.amount(lastCol, row, grand.InexactFloat64(), e.currency.Format(grand), styles.totalMoney)
	if w.err != nil {
		return reporting.Artifact{}, exportErr("write cells", w.err)
	}

	for col := 1; col <= lastCol; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return reporting.Artifact{}, exportErr("column name", err)
		}
		width := float64(widths[col])
		if width < e.profile.MinColumnWidth {
			width = e.profile.MinColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, width+e.profile.ColumnPadding); err != nil {
			return reporting.Artifact{}, exportErr("column width", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return reporting.Artifact{}, exportErr("write workbook", err)
	}
	return reporting.Artifact{
		Filename:    reporting.ExportFilename(fromYear, toYear, "xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func (e *WorkbookExporter) newStyles(f *excelize.File) (workbookStyles, error) {
	var (
		styles workbookStyles
		err    error
	)
	numFmt := e.profile.CurrencyFormat
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&styles.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 16},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&styles.header, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&styles.money, &excelize.Style{CustomNumFmt: &numFmt}},
		{&styles.warranty, &excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.profile.WarrantyFill}},
		}},
		{&styles.totalLabel, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&styles.totalMoney, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt}},
	}
	for _, def := range defs {
		if *def.dst, err = f.NewStyle(def.style); err != nil {
			return workbookStyles{}, err
		}
	}
	return styles, nil
}

// sheetWriter records the first write error and tracks rendered widths per column.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	widths []int
	err    error
}

func (w *sheetWriter) set(col, row int, value any, style int, measure bool) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
			w.err = err
			return
		}
	}
	if measure {
		w.measure(col, fmt.Sprint(value))
	}
}

func (w *sheetWriter) amount(col, row int, value float64, rendered string, style int) {
	w.set(col, row, value, style, false)
	w.measure(col, rendered)
}

func (w *sheetWriter) measure(col int, text string) {
	if n := utf8.RuneCountInString(text); n > w.widths[col] {
		w.widths[col] = n
	}
}

func exportErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", reporting.ErrExportIO, step, err)
}
