package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporting "contract-ledger/internal/reporting/domain"
)

const servicePayload = `[
  {"serviceID": 1, "DeviceName": "Printer", "Location": "HQ", "serialNumber": "SN-1",
   "divisionID": 3, "divisionName": "Finance", "startDate": "2024-01-01T00:00:00.000Z",
   "endDate": "2024-12-31", "monthly_charge": "150.00", "reIssueStatus": 1, "statusID": 1,
   "contractNo": "C-1", "vendorName": "Acme", "Brand": "HP", "Model": "M404", "Type": "Laser", "price": 1800},
  {"serviceID": "2", "DeviceName": "Scanner", "Location": "HQ", "serialNumber": "SC-1",
   "divisionID": "4", "divisionName": "Audit", "startDate": null, "endDate": "2024-12-31",
   "monthly_charge": null, "reIssueStatus": null, "statusID": null},
  {"serviceID": 3, "DeviceName": "Router", "Location": "DC", "serialNumber": "R-1",
   "divisionID": 3, "divisionName": "Finance", "startDate": "not a date", "endDate": "2025-01-31"}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/service", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(servicePayload))
	})
	mux.HandleFunc("/api/service/detail/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"charge_date": "2024-01-15", "monthly_charge": 150},
			{"charge_date": "garbage", "monthly_charge": 10},
			{"charge_date": "2024-02-15T08:00:00Z", "monthly_charge": "150.50"}
		]`))
	})
	mux.HandleFunc("/api/service/detail/5", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"charge_date": "2024-02-29T17:00:00.000Z", "monthly_charge": 200},
			{"charge_date": "2024-04-01", "monthly_charge": 200}
		]`))
	})
	mux.HandleFunc("/api/service/detail/9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListPeriodsFiltersByDivision(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL+"/api/", WithToken("secret"))
	require.NoError(t, err)

	periods, err := client.ListPeriods(context.Background(), reporting.DivisionScope(3))

	require.NoError(t, err)
	require.Len(t, periods, 2)
	first := periods[0]
	assert.Equal(t, reporting.PeriodID("1"), first.ID)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), first.EndDate)
	assert.True(t, first.Reissued)
	assert.Equal(t, "150", first.MonthlyChargeHint.String())
	assert.Equal(t, "1800", first.Price.String())
	assert.Equal(t, "Router", periods[1].DeviceName)
	assert.True(t, periods[1].Malformed())
}

func TestClient_ListPeriodsAllDivisions(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL+"/api", WithToken("secret"))
	require.NoError(t, err)

	periods, err := client.ListPeriods(context.Background(), reporting.AllDivisions())

	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, 4, periods[1].DivisionID)
	assert.True(t, periods[1].Malformed())
	assert.False(t, periods[1].Reissued)
}

func TestClient_ChargeEntriesSkipsUnparseableDates(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)

	entries, err := client.ChargeEntries(context.Background(), "1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), entries[1].ChargeDate)
	assert.Equal(t, "150.5", entries[1].MonthlyCharge.String())
}

func TestClient_ChargeEntriesBucketInLocation(t *testing.T) {
	srv := newTestServer(t)
	bangkok := time.FixedZone("ICT", 7*60*60)

	utc, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)
	local, err := NewClient(srv.URL+"/api", WithLocation(bangkok))
	require.NoError(t, err)

	entries, err := utc.ChargeEntries(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), entries[0].ChargeDate)

	entries, err = local.ChargeEntries(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), entries[0].ChargeDate)
	// plain dates are never shifted
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), entries[1].ChargeDate)
}

func TestClient_ChargeEntriesErrors(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL + "/api")
	require.NoError(t, err)

	_, err = client.ChargeEntries(context.Background(), "9")
	require.Error(t, err)

	_, err = client.ChargeEntries(context.Background(), "404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}
