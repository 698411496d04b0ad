package reporting

import "github.com/shopspring/decimal"

// MatrixRow is one lineage across the report months.
type MatrixRow struct {
	Lineage Lineage
	Cells   map[Month]CellValue
	Total   decimal.Decimal
}

// Cell returns the value for m, uncovered when the month is not in the matrix.
func (r MatrixRow) Cell(m Month) CellValue {
	if cell, ok := r.Cells[m]; ok {
		return cell
	}
	return Uncovered()
}

// ReportMatrix is the lineages-by-months aggregate shared by screen and export.
type ReportMatrix struct {
	Months       []Month
	Rows         []MatrixRow
	ColumnTotals map[Month]decimal.Decimal
}

// ColumnTotal returns the charged sum of month m.
func (m ReportMatrix) ColumnTotal(month Month) decimal.Decimal {
	return m.ColumnTotals[month]
}

// GrandTotal sums the row totals. It always equals the sum of the column totals.
func (m ReportMatrix) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, row := range m.Rows {
		total = total.Add(row.Total)
	}
	return total
}

// Span returns the year range of the matrix columns; ok is false for zero columns.
func (m ReportMatrix) Span() (YearSpan, bool) {
	if len(m.Months) == 0 {
		return YearSpan{}, false
	}
	return YearSpan{From: m.Months[0].Year, To: m.Months[len(m.Months)-1].Year}, true
}

// BuildMatrix resolves every lineage against every month. Only charged cells feed the
// totals. Rows keep the lineage order. The result depends only on the arguments, so it
// can be rebuilt whenever the ledger snapshot grows.
func BuildMatrix(lineages []Lineage, months []Month, ledger LedgerSnapshot, warranty WarrantyIndex) ReportMatrix {
	matrix := ReportMatrix{
		Months:       append([]Month(nil), months...),
		Rows:         make([]MatrixRow, 0, len(lineages)),
		ColumnTotals: make(map[Month]decimal.Decimal, len(months)),
	}
	for _, month := range months {
		matrix.ColumnTotals[month] = decimal.Zero
	}

	for _, lineage := range lineages {
		set := warranty.For(lineage.Key)
		row := MatrixRow{
			Lineage: lineage,
			Cells:   make(map[Month]CellValue, len(months)),
			Total:   decimal.Zero,
		}
		for _, month := range months {
			cell := ResolveCell(lineage, month, ledger, set)
			row.Cells[month] = cell
			if cell.IsCharged() {
				row.Total = row.Total.Add(cell.Amount)
				matrix.ColumnTotals[month] = matrix.ColumnTotals[month].Add(cell.Amount)
			}
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix
}
