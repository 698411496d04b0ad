// Package backend reads contract periods and charge entries from the service
// registry REST API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"contract-ledger/internal/observability/logging"
	"contract-ledger/internal/observability/metrics"
	reporting "contract-ledger/internal/reporting/domain"
)

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("backend: not found")

// Client is a minimal registry REST client.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logging.Logger
	loc     *time.Location
}

// Option configures the client.
type Option func(*Client)

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLocation sets the zone timestamps are converted to before their calendar
// date is taken. Plain dates are not shifted.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client against baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("backend: empty base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("backend: invalid base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logging.Nop(),
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type serviceRecord struct {
	ServiceID     json.Number         `json:"serviceID"`
	DeviceName    string              `json:"DeviceName"`
	Location      string              `json:"Location"`
	SerialNumber  string              `json:"serialNumber"`
	DivisionID    json.Number         `json:"divisionID"`
	DivisionName  string              `json:"divisionName"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	MonthlyCharge decimal.NullDecimal `json:"monthly_charge"`
	ReissueStatus json.Number         `json:"reIssueStatus"`
	ContractNo    string              `json:"contractNo"`
	VendorName    string              `json:"vendorName"`
	Brand         string              `json:"Brand"`
	Model         string              `json:"Model"`
	Type          string              `json:"Type"`
	Price         decimal.NullDecimal `json:"price"`
	StatusID      json.Number         `json:"statusID"`
}

type detailRecord struct {
	ChargeDate    string              `json:"charge_date"`
	MonthlyCharge decimal.NullDecimal `json:"monthly_charge"`
}

// ListPeriods fetches every service record and keeps those inside scope.
// The API has no server-side division filter.
func (c *Client) ListPeriods(ctx context.Context, scope reporting.Scope) ([]reporting.Period, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var records []serviceRecord
	if err := c.doJSON(ctx, http.MethodGet, "/service", &records); err != nil {
		return nil, err
	}

	periods := make([]reporting.Period, 0, len(records))
	for _, rec := range records {
		p, err := rec.period(c.loc)
		if err != nil {
			return nil, err
		}
		if !scope.Includes(p.DivisionID) {
			continue
		}
		if p.Malformed() {
			metrics.IncMalformedPeriod()
			c.logger.Warnw("period dates unusable",
				"periodID", p.ID,
				"startDate", rec.StartDate,
				"endDate", rec.EndDate,
				"error", reporting.ErrMalformedPeriod,
			)
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// ChargeEntries fetches the detail rows of one period.
func (c *Client) ChargeEntries(ctx context.Context, periodID reporting.PeriodID) ([]reporting.ChargeEntry, error) {
	if periodID == "" {
		return nil, errors.New("backend: empty period id")
	}
	var records []detailRecord
	path := "/service/detail/" + url.PathEscape(periodID.String())
	if err := c.doJSON(ctx, http.MethodGet, path, &records); err != nil {
		return nil, err
	}

	entries := make([]reporting.ChargeEntry, 0, len(records))
	for _, rec := range records {
		date, ok := parseDate(rec.ChargeDate, c.loc)
		if !ok {
			c.logger.Warnw("charge entry date unusable", "periodID", periodID, "chargeDate", rec.ChargeDate)
			continue
		}
		entry := reporting.ChargeEntry{PeriodID: periodID, ChargeDate: date}
		if rec.MonthlyCharge.Valid {
			entry.MonthlyCharge = rec.MonthlyCharge.Decimal
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r serviceRecord) period(loc *time.Location) (reporting.Period, error) {
	id := strings.TrimSpace(r.ServiceID.String())
	if id == "" {
		return reporting.Period{}, errors.New("backend: service record without id")
	}
	division, err := intOf(r.DivisionID)
	if err != nil {
		return reporting.Period{}, fmt.Errorf("backend: service %s division: %w", id, err)
	}
	reissue, err := intOf(r.ReissueStatus)
	if err != nil {
		return reporting.Period{}, fmt.Errorf("backend: service %s reissue status: %w", id, err)
	}
	status, err := intOf(r.StatusID)
	if err != nil {
		return reporting.Period{}, fmt.Errorf("backend: service %s status: %w", id, err)
	}

	p := reporting.Period{
		ID:           reporting.PeriodID(id),
		DeviceName:   r.DeviceName,
		SerialNumber: r.SerialNumber,
		Location:     r.Location,
		DivisionID:   division,
		DivisionName: r.DivisionName,
		Reissued:     reissue == 1,
		ContractNo:   r.ContractNo,
		VendorName:   r.VendorName,
		Brand:        r.Brand,
		Model:        r.Model,
		Type:         r.Type,
		StatusID:     status,
	}
	if start, ok := parseDate(r.StartDate, loc); ok {
		p.StartDate = start
	}
	if end, ok := parseDate(r.EndDate, loc); ok {
		p.EndDate = end
	}
	if r.MonthlyCharge.Valid {
		p.MonthlyChargeHint = r.MonthlyCharge.Decimal
	}
	if r.Price.Valid {
		p.Price = r.Price.Decimal
	}
	return p, nil
}

func intOf(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts plain dates and timestamps. Zoned timestamps take their
// calendar date in loc; unzoned values keep the date as written.
func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return reporting.DateOf(t.In(loc)), true
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return reporting.DateOf(t), true
		}
	}
	return time.Time{}, false
}

func (c *Client) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("backend: %s %s: http %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
