package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetricsWithRegisterer(reg)

	m.ObserveRequest("GET", "/pizza/{id}", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/pizza/{id}", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "/pizza/{id}", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/pizza/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/pizza/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	expected := `
# HELP pizza_api_requests_total Total number of dispatched requests
# TYPE pizza_api_requests_total counter
pizza_api_requests_total{method="GET",route="/pizza/{id}",status="200"} 2
pizza_api_requests_total{method="GET",route="/pizza/{id}",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pizza_api_requests_total"))
}

func TestNewRequestMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewRequestMetricsWithRegisterer(reg)
	second := NewRequestMetricsWithRegisterer(reg)

	first.ObserveRequest("POST", "/order", 201, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.requests.WithLabelValues("POST", "/order", "201")))
}
