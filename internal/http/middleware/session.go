package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionFunc returns the bearer token of the active session. ok is false
// when no valid session exists (missing, incomplete or expired).
type SessionFunc func(ctx context.Context) (token string, ok bool)

// Fingerprint derives a stable, non-reversible identifier from a token so it
// can appear in logs and rate-limit keys.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

// RequireSession aborts with 401 unless fn reports a valid session. On
// success the session fingerprint is stored for SessionFrom and added to the
// request-scoped logger.
//
//	HTTP/1.1 401 Unauthorized
//	{ "request_id": "...", "code": "unauthorized", "message": "authentication required" }
func RequireSession(fn SessionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := fn(c.Request.Context())
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "unauthorized",
				"message":    "authentication required",
			})
			return
		}

		fp := Fingerprint(token)
		c.Set(sessionKey, fp)
		l := LoggerFrom(c).With().Str("session", fp).Logger()
		c.Set(loggerKey, &l)
		c.Next()
	}
}
