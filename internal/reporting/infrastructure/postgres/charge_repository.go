package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	reporting "contract-ledger/internal/reporting/domain"
)

const defaultServiceDetailsTable = "service_details"

// ChargeRepository reads monthly charge entries from Postgres.
type ChargeRepository struct {
	db    DBTX
	table string
}

// ChargeOption configures the repository.
type ChargeOption func(*ChargeRepository)

// WithServiceDetailsTable overrides the default table name.
func WithServiceDetailsTable(table string) ChargeOption {
	return func(repo *ChargeRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewChargeRepository constructs a repository.
func NewChargeRepository(db DBTX, opts ...ChargeOption) *ChargeRepository {
	repo := &ChargeRepository{db: db, table: defaultServiceDetailsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ChargeEntries loads a period's entries ordered by charge date.
func (r *ChargeRepository) ChargeEntries(ctx context.Context, periodID reporting.PeriodID) ([]reporting.ChargeEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("charge repo: nil db")
	}
	id, err := strconv.ParseInt(periodID.String(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("charge repo: invalid period id %q", periodID)
	}

	query := fmt.Sprintf(`
SELECT charge_date, monthly_charge
FROM %s
WHERE service_id = $1
ORDER BY charge_date ASC, detail_id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]reporting.ChargeEntry, 0)
	for rows.Next() {
		entry := reporting.ChargeEntry{PeriodID: periodID}
		var charge decimal.NullDecimal
		if err := rows.Scan(&entry.ChargeDate, &charge); err != nil {
			return nil, err
		}
		entry.ChargeDate = entry.ChargeDate.UTC()
		if charge.Valid {
			entry.MonthlyCharge = charge.Decimal
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
