package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	return nil
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/v1/bookings", "200", 120*time.Millisecond)
	m.Observe("GET", "/api/v1/bookings", "200", 80*time.Millisecond)
	m.Observe("POST", "/api/v1/bookings", "409", 10*time.Millisecond)

	counters := gatherFamily(t, reg, "http_requests_total")
	require.NotNil(t, counters)
	require.Len(t, counters.GetMetric(), 2)

	var okCount float64
	for _, metric := range counters.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "status" && label.GetValue() == "200" {
				okCount = metric.GetCounter().GetValue()
			}
		}
	}
	require.Equal(t, float64(2), okCount)

	histograms := gatherFamily(t, reg, "http_request_duration_seconds")
	require.NotNil(t, histograms)
}

func TestHTTPMetricsInFlightGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncInFlight()
	m.IncInFlight()
	m.DecInFlight()

	fam := gatherFamily(t, reg, "http_requests_in_flight")
	require.NotNil(t, fam)
	require.Equal(t, float64(1), fam.GetMetric()[0].GetGauge().GetValue())
}

func TestCronJobMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("invitation-expiry")
	m.IncSuccess("invitation-expiry")
	m.IncFailure("shift-auto-checkout")
	m.ObserveDuration("invitation-expiry", 40*time.Millisecond)

	success := gatherFamily(t, reg, "job_success")
	require.NotNil(t, success)
	require.Equal(t, float64(2), success.GetMetric()[0].GetCounter().GetValue())

	failure := gatherFamily(t, reg, "job_failure")
	require.NotNil(t, failure)
	require.Equal(t, "shift-auto-checkout", failure.GetMetric()[0].GetLabel()[0].GetValue())
}

func TestNilRegistererIsInert(t *testing.T) {
	h := NewHTTPMetrics(nil)
	h.Observe("GET", "/", "200", time.Millisecond)
	h.IncInFlight()
	h.DecInFlight()

	c := NewCronJobMetrics(nil)
	c.IncSuccess("noop")
	c.IncFailure("noop")
	c.ObserveDuration("noop", time.Millisecond)
}
