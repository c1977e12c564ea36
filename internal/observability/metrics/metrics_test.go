package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSignIn(t *testing.T) {
	before := testutil.ToFloat64(SignIns.WithLabelValues("google", "success"))
	ObserveSignIn("google", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(SignIns.WithLabelValues("google", "success")))
}

func TestHTTPMetricsMiddleware_UsesPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := HTTPMetricsMiddleware(mux)

	pattern := "GET /dashboard/clients/{id}"
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", pattern, "404"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/clients/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", pattern, "404")))
}

func TestHTTPMetricsMiddleware_SkipsScrapeAndUnmatched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	h := HTTPMetricsMiddleware(mux)

	scrape := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /metrics", "200"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, scrape, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /metrics", "200")))

	unmatched := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, unmatched+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}
