package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/tracker"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

func TestMetrics_ObserveMutation(t *testing.T) {
	m := New()

	m.ObserveMutation("deal", "create", nil)
	m.ObserveMutation("deal", "create", nil)
	m.ObserveMutation("deal", "update", validation.New("name", "client name is required"))
	m.ObserveMutation("expense", "delete", fmt.Errorf("saving: %w", tracker.ErrPersistence))

	assert.InDelta(t, 2, testutil.ToFloat64(m.mutations.WithLabelValues("deal", "create", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.mutations.WithLabelValues("deal", "update", "rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.mutations.WithLabelValues("expense", "delete", "persistence_error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.persistenceFailures), 0)
}

func TestMetrics_Middleware(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/deals/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fine"))
	})

	for _, path := range []string{"/deals/a", "/deals/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/deals/{id}", "404")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/ok", "200")), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveMutation("activity", "create", errors.New("boom"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `closer_tracker_mutations_total{entity="activity",op="create",outcome="rejected"} 1`))
}
