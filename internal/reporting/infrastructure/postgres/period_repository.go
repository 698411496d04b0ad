package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"contract-ledger/internal/observability/logging"
	"contract-ledger/internal/observability/metrics"
	reporting "contract-ledger/internal/reporting/domain"
)

const (
	defaultServicesTable  = "services"
	defaultDivisionsTable = "divisions"
)

// PeriodRepository reads contract periods from Postgres.
type PeriodRepository struct {
	db             DBTX
	servicesTable  string
	divisionsTable string
	logger         *logging.Logger
}

// PeriodOption configures the repository.
type PeriodOption func(*PeriodRepository)

// WithServicesTable overrides the default services table name.
func WithServicesTable(table string) PeriodOption {
	return func(repo *PeriodRepository) {
		if table != "" {
			repo.servicesTable = table
		}
	}
}

// WithPeriodLogger sets the logger used for malformed rows.
func WithPeriodLogger(logger *logging.Logger) PeriodOption {
	return func(repo *PeriodRepository) {
		if logger != nil {
			repo.logger = logger
		}
	}
}

// NewPeriodRepository constructs a repository.
func NewPeriodRepository(db DBTX, opts ...PeriodOption) *PeriodRepository {
	repo := &PeriodRepository{
		db:             db,
		servicesTable:  defaultServicesTable,
		divisionsTable: defaultDivisionsTable,
		logger:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListPeriods loads the periods visible to scope ordered by id.
// Rows with missing dates are returned with zero dates so they group but never overlap.
func (r *PeriodRepository) ListPeriods(ctx context.Context, scope reporting.Scope) ([]reporting.Period, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("period repo: nil db")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
SELECT s.service_id, s.device_name, s.serial_number, s.location, s.division_id,
	COALESCE(d.division_name, ''), s.start_date, s.end_date, s.monthly_charge,
	s.reissue_status, COALESCE(s.contract_no, ''), COALESCE(s.vendor_name, ''),
	COALESCE(s.brand, ''), COALESCE(s.model, ''), COALESCE(s.type, ''), s.price, s.status_id
FROM %s s
LEFT JOIN %s d ON d.division_id = s.division_id`, r.servicesTable, r.divisionsTable)
	args := []any{}
	if !scope.All() {
		query += "\nWHERE s.division_id = $1"
		args = append(args, scope.DivisionID())
	}
	query += "\nORDER BY s.service_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reporting.Period
	for rows.Next() {
		var (
			id       int64
			p        reporting.Period
			start    sql.NullTime
			end      sql.NullTime
			charge   decimal.NullDecimal
			price    decimal.NullDecimal
			reissued sql.NullInt64
			statusID sql.NullInt64
		)
		if err := rows.Scan(
			&id,
			&p.DeviceName,
			&p.SerialNumber,
			&p.Location,
			&p.DivisionID,
			&p.DivisionName,
			&start,
			&end,
			&charge,
			&reissued,
			&p.ContractNo,
			&p.VendorName,
			&p.Brand,
			&p.Model,
			&p.Type,
			&price,
			&statusID,
		); err != nil {
			return nil, err
		}
		p.ID = reporting.PeriodID(strconv.FormatInt(id, 10))
		if start.Valid {
			p.StartDate = reporting.DateOf(start.Time)
		}
		if end.Valid {
			p.EndDate = reporting.DateOf(end.Time)
		}
		if charge.Valid {
			p.MonthlyChargeHint = charge.Decimal
		}
		if price.Valid {
			p.Price = price.Decimal
		}
		p.Reissued = reissued.Valid && reissued.Int64 == 1
		p.StatusID = int(statusID.Int64)
		if p.Malformed() {
			metrics.IncMalformedPeriod()
			r.logger.Warnw("period dates unusable",
				"periodID", p.ID,
				"error", reporting.ErrMalformedPeriod,
			)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
