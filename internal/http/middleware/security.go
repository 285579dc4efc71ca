// Package middleware contains shared Gin middleware used by the portal's HTTP
// layer.
//
// This file provides SecurityHeaders. Session, ticket and balance payloads
// must never be cached, so the router enables NoStore. HSTS is opt-in and
// only applied to HTTPS requests.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// apiCSP locks JSON responses down completely. The Swagger UI needs scripts
// and styles, so its prefix is listed in SecurityOptions.CSPExempt.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// exposedHeaders are readable by browser clients: the correlation id and
// the back-off hint of a 429.
var exposedHeaders = []string{"X-Request-ID", "Retry-After"}

// SecurityOptions configures SecurityHeaders.
//
// EnableHSTS must only be set when traffic is HTTPS end to end, including
// between proxy and app. HSTSMaxAge defaults to 180 days.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool     // Cache-Control: no-store, plus Pragma and Expires
	EnablePolicy bool     // Permissions-Policy and X-Permitted-Cross-Domain-Policies
	CSPExempt    []string // path prefixes served without the API CSP
}

type header struct{ key, value string }

// SecurityHeaders sets X-Content-Type-Options, X-Frame-Options,
// Referrer-Policy and a deny-all Content-Security-Policy on every response,
// plus the optional groups selected in opt. Any headers in exposedHeaders
// are appended to Access-Control-Expose-Headers.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	static := []header{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if opt.EnablePolicy {
		// The portal sends the configured site coordinates; the browser's
		// location is never needed.
		static = append(static,
			header{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			header{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	if opt.NoStore {
		static = append(static,
			header{"Cache-Control", "no-store"},
			header{"Pragma", "no-cache"},
			header{"Expires", "0"},
		)
	}

	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, s := range static {
			h.Set(s.key, s.value)
		}
		if !hasAnyPrefix(c.Request.URL.Path, opt.CSPExempt) {
			h.Set("Content-Security-Policy", apiCSP)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		exposeHeaders(h, exposedHeaders...)
		c.Next()
	}
}

// exposeHeaders appends names to Access-Control-Expose-Headers, skipping
// the ones already listed.
func exposeHeaders(h http.Header, names ...string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	for _, n := range names {
		if strings.Contains(strings.ToLower(cur), strings.ToLower(n)) {
			continue
		}
		if cur == "" {
			cur = n
		} else {
			cur += ", " + n
		}
	}
	if cur != "" {
		h.Set(key, cur)
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// isHTTPS reports whether the request arrived over TLS, directly or through
// a proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
