package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// InFlight allows at most one request per key to run at a time. A request
// arriving while another with the same key is being handled is rejected:
//
//	HTTP/1.1 409 Conflict
//	{ "request_id": "...", "code": "in_flight", "message": "..." }
//
// The portal uses it on top-up submission so a double click never buys twice.
type InFlight struct {
	keyFn   keyFunc
	message string

	mu     sync.Mutex
	active map[string]struct{}
}

// NewInFlight builds a guard keyed by keyFn. message is returned on conflict.
func NewInFlight(keyFn keyFunc, message string) *InFlight {
	if message == "" {
		message = "a request is already in progress"
	}
	return &InFlight{keyFn: keyFn, message: message, active: make(map[string]struct{})}
}

func (g *InFlight) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *InFlight) release(key string) {
	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()
}

// Busy reports whether a request with key is currently running.
func (g *InFlight) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[key]
	return ok
}

// Handler returns the Gin middleware.
func (g *InFlight) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := g.keyFn(c)
		if !g.acquire(key) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "in_flight",
				"message":    g.message,
			})
			return
		}
		defer g.release(key)
		c.Next()
	}
}
