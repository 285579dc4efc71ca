package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecurity(t *testing.T, opt SecurityOptions, pre gin.HandlerFunc, mutate func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/api/v1/suppliers", func(c *gin.Context) { c.String(http.StatusOK, "[]") })
	r.GET("/swagger/index.html", func(c *gin.Context) { c.String(http.StatusOK, "<html>") })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suppliers", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveSecurity(t, SecurityOptions{}, nil, nil)

	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	if h.Get("Content-Security-Policy") != apiCSP {
		t.Fatalf("CSP = %q", h.Get("Content-Security-Policy"))
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Pragma", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_ExposeRequestID(t *testing.T) {
	cases := []struct {
		name     string
		existing string
		want     string
	}{
		{"added", "", "X-Request-ID, Retry-After"},
		{"appended", "Foo", "Foo, X-Request-ID, Retry-After"},
		{"not duplicated", "x-request-id, Foo", "x-request-id, Foo, Retry-After"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pre := func(c *gin.Context) {
				c.Header("X-Request-ID", "rid-1")
				if tc.existing != "" {
					c.Header("Access-Control-Expose-Headers", tc.existing)
				}
				c.Next()
			}
			h := serveSecurity(t, SecurityOptions{}, pre, nil)
			if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("expose = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_NoStorePolicyAndHSTS(t *testing.T) {
	h := serveSecurity(t, SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}, nil, func(r *http.Request) { r.TLS = &tls.ConnectionState{} })

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
	if got, want := h.Get("Strict-Transport-Security"), "max-age=86400; includeSubDomains; preload"; got != want {
		t.Fatalf("HSTS = %q, want %q", got, want)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	// plain HTTP never gets HSTS
	if got := serveSecurity(t, SecurityOptions{EnableHSTS: true}, nil, nil).Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS over http: %q", got)
	}

	// default max age behind a TLS-terminating proxy
	h := serveSecurity(t, SecurityOptions{EnableHSTS: true}, nil, func(r *http.Request) {
		r.Header.Set("X-Forwarded-Proto", "https")
	})
	if got := h.Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=15552000;") {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_CSPExempt(t *testing.T) {
	opt := SecurityOptions{CSPExempt: []string{"/swagger/"}}
	h := serveSecurity(t, opt, nil, func(r *http.Request) { r.URL.Path = "/swagger/index.html" })
	if got := h.Get("Content-Security-Policy"); got != "" {
		t.Fatalf("swagger UI got CSP %q", got)
	}
	if h.Get("X-Frame-Options") != "DENY" {
		t.Fatal("exempt path lost the baseline headers")
	}
	if got := serveSecurity(t, opt, nil, nil).Get("Content-Security-Policy"); got != apiCSP {
		t.Fatalf("API CSP = %q", got)
	}
}
