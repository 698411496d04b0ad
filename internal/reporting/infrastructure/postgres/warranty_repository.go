package postgres

import (
	"context"
	"errors"
	"fmt"

	reporting "contract-ledger/internal/reporting/domain"
)

const defaultWarrantyTable = "service_warranty_months"

// WarrantyRepository reads per-lineage warranty months from Postgres.
type WarrantyRepository struct {
	db    DBTX
	table string
}

// NewWarrantyRepository constructs a repository.
func NewWarrantyRepository(db DBTX) *WarrantyRepository {
	return &WarrantyRepository{db: db, table: defaultWarrantyTable}
}

// WarrantyMonths returns the lineage's warranty months; month is stored 1-12.
func (r *WarrantyRepository) WarrantyMonths(ctx context.Context, key reporting.LineageKey) (reporting.WarrantySet, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("warranty repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT year, month
FROM %s
WHERE device_name = $1 AND location = $2 AND serial_number = $3`, r.table)

	rows, err := r.db.QueryContext(ctx, query, key.DeviceName, key.Location, key.SerialNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := reporting.WarrantySet{}
	for rows.Next() {
		var year, month int
		if err := rows.Scan(&year, &month); err != nil {
			return nil, err
		}
		if month < 1 || month > 12 {
			continue
		}
		set[reporting.NewMonth(year, month-1)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}
