package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := New("tutor-booking")

	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/bookings", http.StatusCreated, 20*time.Millisecond)
	m.ObserveDBQuery("exec", time.Millisecond, errors.New("boom"))
	m.BookingCreated("online")
	m.BookingCreated("online")
	m.BookingRejected("slot_conflict")
	m.BookingTransition("pending", "confirmed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/api/v1/bookings", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbQueryErrors.WithLabelValues("exec")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated.WithLabelValues("online")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsRejected.WithLabelValues("slot_conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("pending", "confirmed")))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCreated("online")
		m.ObserveDBQuery("query", time.Second, nil)
		m.SetDBPoolStats("postgres", 1, 1, 0, 0)
	})
}

func TestMetricsHandler(t *testing.T) {
	m := New("tutor-booking")
	m.AvailabilityChanged("add_window")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "availability_changes_total")
}
