package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contract-ledger/internal/audit"
	"contract-ledger/internal/auth"
	"contract-ledger/internal/observability/logging"
	reportapp "contract-ledger/internal/reporting/application"
	reporting "contract-ledger/internal/reporting/domain"
)

// ReportHandler serves the report and period APIs under /api/v1.
type ReportHandler struct {
	service     *reportapp.ReportService
	auditLogger audit.Logger
	currency    *CurrencyFormatter
	clock       reportapp.Clock
	anonymous   *reporting.Scope
	logger      *logging.Logger
}

// HandlerOption configures a ReportHandler.
type HandlerOption func(*ReportHandler)

// WithAuditLogger records exports.
func WithAuditLogger(logger audit.Logger) HandlerOption {
	return func(h *ReportHandler) { h.auditLogger = logger }
}

// WithCurrency sets the on-screen currency formatter.
func WithCurrency(currency *CurrencyFormatter) HandlerOption {
	return func(h *ReportHandler) {
		if currency != nil {
			h.currency = currency
		}
	}
}

// WithHandlerClock sets the clock used for the default year.
func WithHandlerClock(clock reportapp.Clock) HandlerOption {
	return func(h *ReportHandler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithAnonymousScope serves unauthenticated requests with scope. Without it they get 401.
func WithAnonymousScope(scope reporting.Scope) HandlerOption {
	return func(h *ReportHandler) { h.anonymous = &scope }
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(logger *logging.Logger) HandlerOption {
	return func(h *ReportHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewReportHandler constructs a handler.
func NewReportHandler(service *reportapp.ReportService, opts ...HandlerOption) (*ReportHandler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	h := &ReportHandler{
		service:  service,
		currency: ThaiBaht(),
		clock:    reportapp.SystemClock{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes mounts the handler's endpoints on r.
func (h *ReportHandler) Routes(r chi.Router) {
	r.Get("/api/v1/reports/yearly", h.handleYearly)
	r.Get("/api/v1/reports/summary", h.handleSummary)
	r.Get("/api/v1/reports/export.xlsx", h.handleExport("xlsx"))
	r.Get("/api/v1/reports/export.pdf", h.handleExport("pdf"))
	r.Get("/api/v1/periods", h.handlePeriods)
}

type reportResponse struct {
	View    reportapp.View `json:"view"`
	Scope   string         `json:"scope"`
	From    int            `json:"from"`
	To      int            `json:"to"`
	Pending int            `json:"pending"`
	Table   Table          `json:"table"`
}

func (h *ReportHandler) handleYearly(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r, false)
	if !ok {
		return
	}
	year := h.clock.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}
	report, err := h.service.YearlyTotal(r.Context(), scope, year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeReport(w, report)
}

func (h *ReportHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	span, err := parseSpan(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	partial, _ := strconv.ParseBool(r.URL.Query().Get("partial"))
	report, err := h.service.Build(r.Context(), reportapp.Request{
		View:     reportapp.ViewSummary,
		Scope:    scope,
		Span:     span,
		Warranty: true,
		Partial:  partial,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.writeReport(w, report)
}

func (h *ReportHandler) handleExport(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.export(w, r, format)
	}
}

func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, format string) {
	scope, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	span, err := parseSpan(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	artifact, err := h.service.Export(r.Context(), scope, span, format)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
	h.logAudit(r, scope, format, span, artifact)
}

type periodResponse struct {
	ID            string `json:"serviceID"`
	DeviceName    string `json:"deviceName"`
	SerialNumber  string `json:"serialNumber"`
	Location      string `json:"location"`
	DivisionID    int    `json:"divisionID"`
	DivisionName  string `json:"divisionName"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	MonthlyCharge string `json:"monthlyCharge"`
	Reissued      bool   `json:"reissued"`
	ContractNo    string `json:"contractNo,omitempty"`
	VendorName    string `json:"vendorName,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Model         string `json:"model,omitempty"`
	Type          string `json:"type,omitempty"`
	Price         string `json:"price"`
	StatusID      int    `json:"statusID"`
	Expiry        int    `json:"expiry"`
	ExpiryLabel   string `json:"expiryLabel"`
}

func (h *ReportHandler) handlePeriods(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	var filter *reporting.ExpiryStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := parseStatus(raw)
		if !ok {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		filter = &status
	}
	list, err := h.service.Periods(r.Context(), scope, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := make([]periodResponse, 0, len(list))
	for _, item := range list {
		p := item.Period
		resp = append(resp, periodResponse{
			ID:            p.ID.String(),
			DeviceName:    p.DeviceName,
			SerialNumber:  p.SerialNumber,
			Location:      p.Location,
			DivisionID:    p.DivisionID,
			DivisionName:  p.DivisionName,
			StartDate:     isoDate(p.StartDate),
			EndDate:       isoDate(p.EndDate),
			MonthlyCharge: p.MonthlyChargeHint.StringFixed(2),
			Reissued:      p.Reissued,
			ContractNo:    p.ContractNo,
			VendorName:    p.VendorName,
			Brand:         p.Brand,
			Model:         p.Model,
			Type:          p.Type,
			Price:         p.Price.StringFixed(2),
			StatusID:      p.StatusID,
			Expiry:        int(item.Status),
			ExpiryLabel:   item.Status.String(),
		})
	}
	writeJSON(w, resp)
}

// scope resolves the caller's scope; allDivisions marks views where admins see everything.
func (h *ReportHandler) scope(w http.ResponseWriter, r *http.Request, allDivisions bool) (reporting.Scope, bool) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		return identity.Scope(allDivisions), true
	}
	if h.anonymous != nil {
		return *h.anonymous, true
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
	return reporting.Scope{}, false
}

func (h *ReportHandler) writeReport(w http.ResponseWriter, report *reportapp.Report) {
	table := RenderTable(report.Matrix, h.currency)
	table.Pending = report.Pending
	writeJSON(w, reportResponse{
		View:    report.View,
		Scope:   report.Scope.String(),
		From:    report.Span.From,
		To:      report.Span.To,
		Pending: report.Pending,
		Table:   table,
	})
}

func (h *ReportHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reporting.ErrInvalidYearRange), errors.Is(err, reporting.ErrInvalidScope):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reportapp.ErrUnsupportedFormat):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, reporting.ErrExportIO):
		http.Error(w, "export failed", http.StatusInternalServerError)
	default:
		logging.FromContext(r.Context(), h.logger).Errorw("report request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
	}
}

func (h *ReportHandler) logAudit(r *http.Request, scope reporting.Scope, format string, span *reporting.YearSpan, artifact reporting.Artifact) {
	if h.auditLogger == nil {
		return
	}
	identity, _ := auth.IdentityFromContext(r.Context())
	meta := map[string]any{"filename": artifact.Filename, "bytes": len(artifact.Data)}
	payload, _ := json.Marshal(meta)
	entry := audit.Entry{
		Actor:      identity.Subject,
		Role:       string(identity.Role),
		DivisionID: identity.DivisionID,
		Action:     audit.ActionReportExport,
		Scope:      scope.String(),
		Format:     format,
		Metadata:   payload,
		IP:         audit.ClientIP(r),
		UserAgent:  r.UserAgent(),
	}
	if span != nil {
		entry.FromYear, entry.ToYear = span.From, span.To
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Warnw("audit write failed", "action", entry.Action, "error", err)
	}
}

// parseSpan reads from/to. Neither yields nil (derived span); from alone is a single year.
func parseSpan(r *http.Request) (*reporting.YearSpan, error) {
	q := r.URL.Query()
	rawFrom, rawTo := q.Get("from"), q.Get("to")
	if rawFrom == "" && rawTo == "" {
		return nil, nil
	}
	if rawFrom == "" {
		return nil, fmt.Errorf("%w: missing from", reporting.ErrInvalidYearRange)
	}
	from, err := strconv.Atoi(rawFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: from %q", reporting.ErrInvalidYearRange, rawFrom)
	}
	to := from
	if rawTo != "" {
		if to, err = strconv.Atoi(rawTo); err != nil {
			return nil, fmt.Errorf("%w: to %q", reporting.ErrInvalidYearRange, rawTo)
		}
	}
	span := reporting.YearSpan{From: from, To: to}
	if err := span.Validate(); err != nil {
		return nil, err
	}
	return &span, nil
}

func parseStatus(raw string) (reporting.ExpiryStatus, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		status := reporting.ExpiryStatus(n)
		return status, status >= reporting.ExpiryIssued && status <= reporting.ExpiryExpired
	}
	return reporting.ParseExpiryStatus(raw)
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
