package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contract-ledger/internal/observability/metrics"
	reporting "contract-ledger/internal/reporting/domain"
)

// ErrUnsupportedFormat is returned when no exporter is registered for a format.
var ErrUnsupportedFormat = errors.New("report service: unsupported export format")

// Exporter serializes a matrix into a downloadable artifact.
type Exporter interface {
	Export(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error)
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error)

// Export calls f.
func (f ExporterFunc) Export(matrix reporting.ReportMatrix, title string, fromYear, toYear int) (reporting.Artifact, error) {
	return f(matrix, title, fromYear, toYear)
}

// WithExporter registers an exporter for format, e.g. "xlsx".
func WithExporter(format string, exporter Exporter) ServiceOption {
	return func(s *ReportService) {
		if format == "" || exporter == nil {
			return
		}
		if s.exporters == nil {
			s.exporters = make(map[string]Exporter)
		}
		s.exporters[format] = exporter
	}
}

// Export builds the warranty-aware matrix for span and serializes it as format.
// A nil span is derived from the data. The matrix is built in full before export.
func (s *ReportService) Export(ctx context.Context, scope reporting.Scope, span *reporting.YearSpan, format string) (reporting.Artifact, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return reporting.Artifact{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	report, err := s.Build(ctx, Request{View: ViewExport, Scope: scope, Span: span, Warranty: true})
	if err != nil {
		return reporting.Artifact{}, err
	}

	start := time.Now()
	title := reporting.ReportTitle(report.Span.From, report.Span.To)
	artifact, err := exporter.Export(report.Matrix, title, report.Span.From, report.Span.To)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(start))
		s.logger.Errorw("report export failed", "format", format, "scope", scope.String(), "error", err)
		return reporting.Artifact{}, err
	}
	metrics.ObserveReportExport(format, metrics.ResultSuccess, time.Since(start))
	return artifact, nil
}
