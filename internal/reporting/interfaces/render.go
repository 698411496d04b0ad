package interfaces

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	reporting "contract-ledger/internal/reporting/domain"
)

const (
	emptyCell    = "-"
	warrantyText = "On Warranty"
	screenDate   = "Jan 2, 2006"
)

// CurrencyFormatter renders amounts with a symbol prefix and locale grouping.
type CurrencyFormatter struct {
	symbol  string
	printer *message.Printer
}

// NewCurrencyFormatter builds a formatter for tag. An empty symbol renders bare numbers.
func NewCurrencyFormatter(symbol string, tag language.Tag) *CurrencyFormatter {
	return &CurrencyFormatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

// ThaiBaht formats like ฿1,234.00.
func ThaiBaht() *CurrencyFormatter {
	return NewCurrencyFormatter("฿", language.Thai)
}

// Format renders amount with two fraction digits.
func (f *CurrencyFormatter) Format(amount decimal.Decimal) string {
	return f.symbol + f.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(2)))
}

// Table is the on-screen rendition of a report matrix.
type Table struct {
	Title      string     `json:"title"`
	Caption    string     `json:"caption,omitempty"`
	Months     []string   `json:"months"`
	Rows       []TableRow `json:"rows"`
	Totals     []string   `json:"totals"`
	GrandTotal string     `json:"grandTotal"`
	Pending    int        `json:"pending"`
}

// TableRow is one lineage line.
type TableRow struct {
	Description      string   `json:"description"`
	DateRange        string   `json:"dateRange"`
	Division         string   `json:"division"`
	RepresentativeID string   `json:"representativeId"`
	Cells            []string `json:"cells"`
	Total            string   `json:"total"`
}

// RenderTable formats matrix for display. Uncovered cells and zero totals show "-".
// A nil formatter uses Thai baht.
func RenderTable(matrix reporting.ReportMatrix, currency *CurrencyFormatter) Table {
	if currency == nil {
		currency = ThaiBaht()
	}
	table := Table{
		Months: make([]string, 0, len(matrix.Months)),
		Rows:   make([]TableRow, 0, len(matrix.Rows)),
		Totals: make([]string, 0, len(matrix.Months)),
	}
	if span, ok := matrix.Span(); ok {
		table.Title = reporting.ReportTitle(span.From, span.To)
		table.Caption = fmt.Sprintf("Total cost from Jan %d to Dec %d", span.From, span.To)
	}

	for _, month := range matrix.Months {
		table.Months = append(table.Months, month.Label())
	}

	for _, row := range matrix.Rows {
		l := row.Lineage
		out := TableRow{
			Description:      fmt.Sprintf("%s %s(%s)", l.DeviceName(), l.Key.SerialNumber, l.Key.Location),
			DateRange:        dateRange(l),
			Division:         l.DivisionName,
			RepresentativeID: l.RepresentativeID.String(),
			Cells:            make([]string, 0, len(matrix.Months)),
			Total:            amountOrDash(currency, row.Total),
		}
		for _, month := range matrix.Months {
			out.Cells = append(out.Cells, cellText(currency, row.Cell(month)))
		}
		table.Rows = append(table.Rows, out)
	}

	for _, month := range matrix.Months {
		table.Totals = append(table.Totals, amountOrDash(currency, matrix.ColumnTotal(month)))
	}
	table.GrandTotal = currency.Format(matrix.GrandTotal())
	return table
}

func cellText(currency *CurrencyFormatter, cell reporting.CellValue) string {
	switch cell.Kind {
	case reporting.CellCharged:
		return currency.Format(cell.Amount)
	case reporting.CellWarranty:
		return warrantyText
	default:
		return emptyCell
	}
}

func amountOrDash(currency *CurrencyFormatter, amount decimal.Decimal) string {
	if amount.IsZero() {
		return emptyCell
	}
	return currency.Format(amount)
}

func dateRange(l reporting.Lineage) string {
	if l.EffectiveStart.IsZero() || l.EffectiveEnd.IsZero() {
		return ""
	}
	return fmt.Sprintf("(%s-%s)", l.EffectiveStart.Format(screenDate), l.EffectiveEnd.Format(screenDate))
}
