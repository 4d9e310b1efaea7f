package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Metrics{}
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil, zap.NewNop()))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RecordsByRoutePattern(t *testing.T) {
	reader, mp := newTestMeter()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetrics(mp.Meter("test"), zap.NewNop()))
	router.GET("/api/v1/posts/:slug", func(c *gin.Context) { c.String(http.StatusOK, "post") })
	router.POST("/api/v1/contact", func(c *gin.Context) { c.String(http.StatusUnprocessableEntity, "bad") })

	for _, slug := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+slug, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(`{"x":1}`)))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	total := findMetric(t, reader, "http_server_request_total").Data.(metricdata.Sum[int64])
	counts := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		status, _ := dp.Attributes.Value(attribute.Key("http.response.status_code"))
		counts[route.AsString()+" "+status.Emit()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		"/api/v1/posts/:slug 200": 2,
		"/api/v1/contact 422":     1,
		"unknown 404":             1,
	}, counts)

	duration := findMetric(t, reader, "http_server_request_duration_seconds").Data.(metricdata.Histogram[float64])
	assert.Len(t, duration.DataPoints, 3)

	active := findMetric(t, reader, "http_server_active_requests").Data.(metricdata.Sum[int64])
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}

	reqSize := findMetric(t, reader, "http_server_request_size_bytes").Data.(metricdata.Histogram[float64])
	require.Len(t, reqSize.DataPoints, 1)
	assert.Equal(t, float64(7), reqSize.DataPoints[0].Sum)
}
