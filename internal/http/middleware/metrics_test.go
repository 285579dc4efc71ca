package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersAndUnmatchedPath(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/v1/suppliers", func(c *gin.Context) { c.String(http.StatusOK, "[]") })
	r.DELETE("/api/v1/history", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/suppliers", "200"))
	base204 := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/v1/history", "204"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404"))

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/suppliers", http.StatusOK},
		{http.MethodDelete, "/api/v1/history", http.StatusNoContent},
		{http.MethodGet, "/does-not-exist/3001234567", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("%s %s -> %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/suppliers", "200")); got != baseOK+1 {
		t.Fatalf("suppliers counter = %v; want %v", got, baseOK+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/v1/history", "204")); got != base204+1 {
		t.Fatalf("history counter = %v; want %v", got, base204+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404")); got != base404+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, base404+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}

func TestObserveTopUpAndListeners(t *testing.T) {
	before := testutil.ToFloat64(topUps.WithLabelValues(TopUpDeclined))
	ObserveTopUp(TopUpDeclined)
	ObserveTopUp(TopUpDeclined)
	if got := testutil.ToFloat64(topUps.WithLabelValues(TopUpDeclined)); got != before+2 {
		t.Fatalf("declined = %v; want %v", got, before+2)
	}

	base := testutil.ToFloat64(eventListeners)
	done := TrackListener()
	if got := testutil.ToFloat64(eventListeners); got != base+1 {
		t.Fatalf("listeners = %v; want %v", got, base+1)
	}
	done()
	if got := testutil.ToFloat64(eventListeners); got != base {
		t.Fatalf("listeners after done = %v; want %v", got, base)
	}
}
