package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := New(true)

	m.RecordDonationCreated()
	m.RecordDonationCreated()
	m.RecordDonationClaimed()
	m.RecordFoodAnalysis("ok")
	m.RecordFoodAnalysis("no_food")
	m.RecordFoodAnalysis("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.donationsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.donationsClaimed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.foodAnalyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.foodAnalyses.WithLabelValues("no_food")))
}

func TestMetricsHandler(t *testing.T) {
	m := New(true)
	m.RecordDonationCreated()
	m.ObserveRequest(http.MethodGet, "/donations", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "wastenot_donations_created_total 1")
	assert.Contains(t, string(body), `wastenot_http_request_duration_seconds_count{method="GET",route="/donations",status="200"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	m := New(false)

	assert.NotPanics(t, func() {
		m.RecordDonationCreated()
		m.RecordDonationClaimed()
		m.RecordFoodAnalysis("error")
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDonationCreated()
		m.RecordFoodAnalysis("ok")
	})
}
