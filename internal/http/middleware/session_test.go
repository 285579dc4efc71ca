package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFingerprint(t *testing.T) {
	a, b := Fingerprint("token-a"), Fingerprint("token-b")
	if len(a) != 12 || a == b {
		t.Fatalf("fingerprints: %q %q", a, b)
	}
	if Fingerprint("token-a") != a {
		t.Fatalf("fingerprint not stable")
	}
	if strings.Contains(a, "token") {
		t.Fatalf("fingerprint leaks token: %q", a)
	}
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name  string
		token string
		ok    bool
		want  int
	}{
		{"valid", "tok", true, http.StatusOK},
		{"expired", "tok", false, http.StatusUnauthorized},
		{"empty token", "", true, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLogger(t)

			r := gin.New()
			r.Use(RequestID(), RedactingLogger(RedactOptions{}))
			r.Use(RequireSession(func(context.Context) (string, bool) { return tc.token, tc.ok }))
			r.GET("/api/v1/session", func(c *gin.Context) {
				LoggerFrom(c).Info().Msg("inside")
				c.String(http.StatusOK, SessionFrom(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}

			if tc.want == http.StatusOK {
				if w.Body.String() != Fingerprint(tc.token) {
					t.Fatalf("session = %q", w.Body.String())
				}
				if !strings.Contains(buf.String(), `"session":"`+Fingerprint(tc.token)+`"`) {
					t.Fatalf("logs not tagged with session: %s", buf.String())
				}
				return
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["code"] != "unauthorized" || body["request_id"] != w.Header().Get(requestIDHeader) {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}
