package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contract-ledger/internal/observability/logging"
	"contract-ledger/internal/observability/metrics"
	reporting "contract-ledger/internal/reporting/domain"
)

// View names a report flavour.
type View string

const (
	ViewYearly  View = "yearly"
	ViewSummary View = "summary"
	ViewExport  View = "export"
)

// Request describes one matrix build.
type Request struct {
	View  View
	Scope reporting.Scope
	// Span defaults to the years touched by the scope's periods when nil.
	Span *reporting.YearSpan
	// YearWindow drops periods outside Span before grouping. Without it every
	// period joins its lineage and months outside Span are simply not shown.
	YearWindow bool
	// Warranty enables per-lineage warranty months.
	Warranty bool
	// Partial builds from whatever is cached and fetches the rest in the background.
	Partial bool
}

// Report is a built matrix with the inputs that shaped it.
type Report struct {
	View     View
	Scope    reporting.Scope
	Span     reporting.YearSpan
	Warranty bool
	Matrix   reporting.ReportMatrix
	// Pending counts periods whose charge entries were not cached at build time.
	Pending int
}

// ReportService builds report matrices for the yearly, summary and export views.
// Exporters registered with WithExporter serialize the export view.
type ReportService struct {
	periods  PeriodSource
	ledger   *ChargeLedger
	warranty WarrantySource
	clock    Clock
	logger   *logging.Logger

	exporters map[string]Exporter
}

// ServiceOption configures a ReportService.
type ServiceOption func(*ReportService)

// WithWarrantySource enables warranty lookups for warranty-aware views.
func WithWarrantySource(source WarrantySource) ServiceOption {
	return func(s *ReportService) { s.warranty = source }
}

// WithClock overrides the clock used for derived year spans.
func WithClock(clock Clock) ServiceOption {
	return func(s *ReportService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *logging.Logger) ServiceOption {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewReportService constructs a service.
func NewReportService(periods PeriodSource, ledger *ChargeLedger, opts ...ServiceOption) (*ReportService, error) {
	if periods == nil {
		return nil, errors.New("report service: nil period source")
	}
	if ledger == nil {
		return nil, errors.New("report service: nil ledger")
	}
	s := &ReportService{
		periods: periods,
		ledger:  ledger,
		clock:   SystemClock{},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("report_service")
	return s, nil
}

// YearlyTotal builds the single-year view without warranty.
func (s *ReportService) YearlyTotal(ctx context.Context, scope reporting.Scope, year int) (*Report, error) {
	span := reporting.YearSpan{From: year, To: year}
	return s.Build(ctx, Request{View: ViewYearly, Scope: scope, Span: &span, YearWindow: true})
}

// Summary builds the multi-year view. A nil span is derived from the data.
func (s *ReportService) Summary(ctx context.Context, scope reporting.Scope, span *reporting.YearSpan) (*Report, error) {
	return s.Build(ctx, Request{View: ViewSummary, Scope: scope, Span: span, Warranty: true})
}

// Build runs one report request end to end.
func (s *ReportService) Build(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportBuild(string(req.View), result, time.Since(start))
	}()

	report, err := s.build(ctx, req)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return report, nil
}

func (s *ReportService) build(ctx context.Context, req Request) (*Report, error) {
	if err := req.Scope.Validate(); err != nil {
		return nil, err
	}
	if req.Span != nil {
		if err := req.Span.Validate(); err != nil {
			return nil, err
		}
	}

	periods, err := s.periods.ListPeriods(ctx, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("report service: list periods: %w", err)
	}

	var span reporting.YearSpan
	if req.Span != nil {
		span = *req.Span
	} else {
		span = reporting.DeriveYearSpan(periods, s.clock.Now())
	}

	var groupOpts []reporting.GroupOption
	if req.YearWindow {
		groupOpts = append(groupOpts, reporting.WithinYears(span))
	}
	lineages := reporting.BuildLineages(periods, groupOpts...)
	ids := make([]reporting.PeriodID, 0, len(periods))
	for _, l := range lineages {
		ids = append(ids, l.PeriodIDs()...)
	}

	if req.Partial {
		s.ledger.Prefetch(ctx, ids)
	} else if err := s.ledger.Load(ctx, ids); err != nil {
		return nil, err
	}

	var warranty reporting.WarrantyIndex
	if req.Warranty {
		warranty = s.loadWarranty(ctx, lineages)
	}

	snapshot := s.ledger.Snapshot()
	pending := 0
	for _, id := range ids {
		if _, ok := snapshot[id]; !ok {
			pending++
		}
	}

	matrix := reporting.BuildMatrix(lineages, span.Months(), snapshot, warranty)
	s.logger.Debugw("report built",
		"view", req.View,
		"scope", req.Scope.String(),
		"from", span.From,
		"to", span.To,
		"rows", len(matrix.Rows),
		"pending", pending,
	)
	return &Report{
		View:     req.View,
		Scope:    req.Scope,
		Span:     span,
		Warranty: req.Warranty,
		Matrix:   matrix,
		Pending:  pending,
	}, nil
}

// loadWarranty returns an empty, non-nil index when warranty is requested but no
// source is configured, so every lineage resolves without warranty months.
func (s *ReportService) loadWarranty(ctx context.Context, lineages []reporting.Lineage) reporting.WarrantyIndex {
	index := make(reporting.WarrantyIndex, len(lineages))
	if s.warranty == nil {
		return index
	}
	for _, l := range lineages {
		set, err := s.warranty.WarrantyMonths(ctx, l.Key)
		if err != nil {
			s.logger.Warnw("warranty months unavailable", "lineage", l.Key.String(), "error", err)
			continue
		}
		if len(set) > 0 {
			index[l.Key] = set
		}
	}
	return index
}

// PeriodStatus pairs a period with its derived expiry status.
type PeriodStatus struct {
	Period reporting.Period
	Status reporting.ExpiryStatus
}

// Periods lists the scope's periods with their expiry status, optionally filtered.
// Malformed periods carry a zero status and never match a filter.
func (s *ReportService) Periods(ctx context.Context, scope reporting.Scope, filter *reporting.ExpiryStatus) ([]PeriodStatus, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	periods, err := s.periods.ListPeriods(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("report service: list periods: %w", err)
	}
	now := s.clock.Now()
	result := make([]PeriodStatus, 0, len(periods))
	for _, p := range periods {
		var status reporting.ExpiryStatus
		if !p.Malformed() {
			status = reporting.ClassifyExpiry(p.EndDate, now)
		}
		if filter != nil && status != *filter {
			continue
		}
		result = append(result, PeriodStatus{Period: p, Status: status})
	}
	return result, nil
}
