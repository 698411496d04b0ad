package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporting "contract-ledger/internal/reporting/domain"
)

func TestReportService_ExportUsesRegisteredExporter(t *testing.T) {
	repo := seedRepository()
	ledger, err := NewChargeLedger(repo)
	require.NoError(t, err)

	var gotTitle string
	var gotMatrix reporting.ReportMatrix
	exporter := ExporterFunc(func(matrix reporting.ReportMatrix, title string, from, to int) (reporting.Artifact, error) {
		gotTitle = title
		gotMatrix = matrix
		return reporting.Artifact{Filename: reporting.ExportFilename(from, to, "xlsx"), Data: []byte("ok")}, nil
	})
	svc, err := NewReportService(repo, ledger, WithExporter("xlsx", exporter))
	require.NoError(t, err)

	span := reporting.YearSpan{From: 2024, To: 2024}
	artifact, err := svc.Export(context.Background(), reporting.DivisionScope(1), &span, "xlsx")

	require.NoError(t, err)
	assert.Equal(t, "Service_Total_2024.xlsx", artifact.Filename)
	assert.Equal(t, "Service Total for Year 2024", gotTitle)
	assert.Equal(t, "1800", gotMatrix.GrandTotal().String())
}

func TestReportService_ExportErrors(t *testing.T) {
	repo := seedRepository()
	ledger, err := NewChargeLedger(repo)
	require.NoError(t, err)
	failing := ExporterFunc(func(reporting.ReportMatrix, string, int, int) (reporting.Artifact, error) {
		return reporting.Artifact{}, errors.Join(reporting.ErrExportIO, errors.New("disk full"))
	})
	svc, err := NewReportService(repo, ledger, WithExporter("xlsx", failing))
	require.NoError(t, err)
	span := reporting.YearSpan{From: 2024, To: 2024}

	_, err = svc.Export(context.Background(), reporting.DivisionScope(1), &span, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.Export(context.Background(), reporting.DivisionScope(1), &span, "xlsx")
	assert.ErrorIs(t, err, reporting.ErrExportIO)

	bad := reporting.YearSpan{From: 2025, To: 2024}
	_, err = svc.Export(context.Background(), reporting.DivisionScope(1), &bad, "xlsx")
	assert.ErrorIs(t, err, reporting.ErrInvalidYearRange)
}
