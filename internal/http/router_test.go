package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/auth"
	api "github.com/MrJamesThe3rd/closer/internal/http"
	"github.com/MrJamesThe3rd/closer/internal/http/activity"
	"github.com/MrJamesThe3rd/closer/internal/http/deal"
	"github.com/MrJamesThe3rd/closer/internal/http/demo"
	"github.com/MrJamesThe3rd/closer/internal/http/expense"
	"github.com/MrJamesThe3rd/closer/internal/http/export"
	"github.com/MrJamesThe3rd/closer/internal/http/importcsv"
	"github.com/MrJamesThe3rd/closer/internal/http/kpi"
	"github.com/MrJamesThe3rd/closer/internal/http/matching"
	"github.com/MrJamesThe3rd/closer/internal/http/settings"
	"github.com/MrJamesThe3rd/closer/internal/metrics"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
)

func newServer(t *testing.T, provider storage.Provider, opts api.Options) http.Handler {
	t.Helper()

	a, err := app.New(context.Background(), provider, app.Options{})
	require.NoError(t, err)

	return api.New(api.Handlers{
		Deals:      deal.NewHandler(a.Tracker),
		Expenses:   expense.NewHandler(a.Tracker),
		Activities: activity.NewHandler(a.Tracker),
		KPI:        kpi.NewHandler(a.Tracker, a.Settings),
		Settings:   settings.NewHandler(a.Settings),
		Demo:       demo.NewHandler(a.Demo),
		Import:     importcsv.NewHandler(a.Importer),
		Matching:   matching.NewHandler(a.Matching),
		Export:     export.NewHandler(a.Export),
	}, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func createDeal(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/api/v1/deals", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[map[string]any](t, rec)
}

func TestDeals_Lifecycle(t *testing.T) {
	h := newServer(t, memory.New(), api.Options{})

	created := createDeal(t, h, `{
		"name": "Dana Whitfield",
		"property": "14 Harbor Lane",
		"side": "SELLER",
		"list_price": 50000000,
		"commission_rate_pct": 2.5,
		"listing_date": "2025-05-01T00:00:00Z"
	}`)

	id := created["id"].(string)
	assert.Equal(t, "LEAD", created["stage"])
	assert.Equal(t, "Lead", created["stage_label"])
	assert.EqualValues(t, 1000, created["close_probability_bps"])
	assert.EqualValues(t, 1_250_000, created["expected_commission"])
	assert.Nil(t, created["realized_commission"])

	rec := do(t, h, http.MethodPatch, "/api/v1/deals/"+id, `{"stage": "UNDER_CONTRACT"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 9000, decode[map[string]any](t, rec)["close_probability_bps"])

	rec = do(t, h, http.MethodPost, "/api/v1/deals/"+id+"/stage", `{"stage": "CLOSED"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "realized_commission", decode[map[string]any](t, rec)["field"])

	rec = do(t, h, http.MethodPost, "/api/v1/deals/"+id+"/stage",
		`{"stage": "CLOSED", "realized_commission": 1300000, "closed_price": 52000000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	closed := decode[map[string]any](t, rec)
	assert.EqualValues(t, 10000, closed["close_probability_bps"])
	assert.EqualValues(t, 2_000_000, closed["price_variance"])
	assert.NotNil(t, closed["closed_at"])

	rec = do(t, h, http.MethodPost, "/api/v1/expenses", `{
		"deal_id": "`+id+`",
		"category": "staging",
		"date": "2025-06-01T00:00:00Z",
		"quantity": 1,
		"cost_per_unit": 100000
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/deals/"+id+"/net-commission", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1_200_000, decode[map[string]any](t, rec)["net_commission"])

	rec = do(t, h, http.MethodGet, "/api/v1/deals/"+id+"/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/api/v1/deals/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestDeals_ReopenedSellerDropsClosingFigures(t *testing.T) {
	h := newServer(t, memory.New(), api.Options{})

	created := createDeal(t, h, `{
		"name": "Dana Whitfield",
		"property": "14 Harbor Lane",
		"side": "SELLER",
		"list_price": 50000000,
		"commission_rate_pct": 2.5,
		"listing_date": "2025-05-01T00:00:00Z"
	}`)
	id := created["id"].(string)

	rec := do(t, h, http.MethodPost, "/api/v1/deals/"+id+"/stage",
		`{"stage": "CLOSED", "realized_commission": 1300000, "closed_price": 52000000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPatch, "/api/v1/deals/"+id, `{"stage": "PENDING_CLOSE"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reopened := decode[map[string]any](t, rec)
	assert.EqualValues(t, 9500, reopened["close_probability_bps"])
	assert.Nil(t, reopened["realized_commission"])
	assert.Nil(t, reopened["closed_price"])
	assert.Nil(t, reopened["price_variance"])
	assert.Nil(t, reopened["sale_to_list_ratio"])

	listed := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	wantDays := int(time.Since(listed).Hours() / 24)
	assert.GreaterOrEqual(t, reopened["days_on_market"], float64(wantDays))
}

func TestImport_RejectsSpreadsheet(t *testing.T) {
	h := newServer(t, memory.New(), api.Options{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "statement.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x00, 0x14}, 32)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/v1/import/preview", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "not a text export")
}

func TestDeals_Errors(t *testing.T) {
	h := newServer(t, memory.New(), api.Options{})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "missing name",
			method:     http.MethodPost,
			path:       "/api/v1/deals",
			body:       `{"property": "1 Elm St", "side": "BUYER"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "name",
		},
		{
			name:       "unknown side",
			method:     http.MethodPost,
			path:       "/api/v1/deals",
			body:       `{"name": "A", "property": "1 Elm St", "side": "LANDLORD"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "side",
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       "/api/v1/deals",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown deal",
			method:     http.MethodGet,
			path:       "/api/v1/deals/missing",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "net commission of unknown deal",
			method:     http.MethodGet,
			path:       "/api/v1/deals/missing/net-commission",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "expense for unknown deal",
			method:     http.MethodPost,
			path:       "/api/v1/expenses",
			body:       `{"deal_id": "missing", "category": "staging", "date": "2025-06-01T00:00:00Z", "quantity": 1, "cost_per_unit": 100}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "deal_id",
		},
		{
			name:       "bad report period",
			method:     http.MethodGet,
			path:       "/api/v1/report?period=quarter&year=2025&quarter=5",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode[map[string]any](t, rec)["field"])
			}
		})
	}
}

func TestDeals_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := storage.NewMockProvider(ctrl)
	provider.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	provider.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	h := newServer(t, provider, api.Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/deals", `{"name": "A", "property": "1 Elm St", "side": "BUYER"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/deals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestDashboardAndSettings(t *testing.T) {
	h := newServer(t, memory.New(), api.Options{})

	rec := do(t, h, http.MethodPut, "/api/v1/settings", `{"annual_gci_goal": 10000000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/settings", `{"estimated_tax_rate": 150}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	year := time.Now().Year()

	createDeal(t, h, `{
		"name": "Sam Ortiz",
		"property": "3 Pine Road",
		"side": "BUYER",
		"stage": "CLOSED",
		"realized_commission": 2500000
	}`)
	createDeal(t, h, `{"name": "Lee Park", "property": "9 Oak Ave", "side": "BUYER", "expected_commission": 1000000}`)

	rec = do(t, h, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	dash := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2_500_000, dash["gci"])
	assert.EqualValues(t, 1, dash["closed_deals"])
	assert.EqualValues(t, 2, dash["total_deals"])
	assert.EqualValues(t, 25, dash["goal_progress_pct"])
	assert.EqualValues(t, 100_000, dash["pipeline_value"])
	assert.Len(t, dash["monthly_gci"], 12)

	rec = do(t, h, http.MethodGet, "/api/v1/dashboard?year="+time.Date(year-1, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["gci"])

	rec = do(t, h, http.MethodGet, "/api/v1/dashboard?year=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDemoMode(t *testing.T) {
	h := newServer(t, memory.New(), api.Options{})

	createDeal(t, h, `{"name": "Real Client", "property": "1 Elm St", "side": "BUYER"}`)

	rec := do(t, h, http.MethodPost, "/api/v1/demo/enable", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["active"])

	rec = do(t, h, http.MethodGet, "/api/v1/deals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, len(decode[[]map[string]any](t, rec)), 1)

	rec = do(t, h, http.MethodPost, "/api/v1/demo/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["active"])

	rec = do(t, h, http.MethodGet, "/api/v1/deals", "")
	require.Equal(t, http.StatusOK, rec.Code)

	deals := decode[[]map[string]any](t, rec)
	require.Len(t, deals, 1)
	assert.Equal(t, "Real Client", deals[0]["name"])
}

func TestAuthAndMetrics(t *testing.T) {
	authn, err := auth.New(strings.Repeat("k", 32), time.Now)
	require.NoError(t, err)

	h := newServer(t, memory.New(), api.Options{Auth: authn, Metrics: metrics.New()})

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/deals", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := authn.Issue("agent", time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("closer_http_requests_total")))
}
