// Portal HTTP handlers.
//
// Handlers are transport-thin: they bind input, call the session store and
// the top-up service, and translate results into HTTP responses. Routes:
//   - POST   /session         (login)
//   - GET    /session         (session state)
//   - DELETE /session         (logout)
//   - GET    /suppliers       (cached supplier list, ?refresh=true)
//   - POST   /topups          (submit a top-up)
//   - GET    /history         (?limit=)
//   - GET    /history/{id}
//   - DELETE /history
//   - GET    /events          (logout notifications over websocket)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/events"
	"github.com/tbourn/go-topup-portal/internal/gateway"
	"github.com/tbourn/go-topup-portal/internal/services"
	"github.com/tbourn/go-topup-portal/internal/storage"
	"github.com/tbourn/go-topup-portal/internal/validate"
)

//
// Service contracts (context-aware)
//

// SessionService is the operator session as the handlers see it.
type SessionService interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.Session, error)
	Logout(ctx context.Context, reason string) error
	State(ctx context.Context) domain.Session
	IsTokenValid(ctx context.Context) bool
}

// PortalService runs the supplier, top-up and history flows.
type PortalService interface {
	Suppliers(ctx context.Context, refresh bool) (services.SuppliersResult, error)
	TopUp(ctx context.Context, form validate.Form) (*domain.Ticket, error)
	History(ctx context.Context, limit int) []domain.HistoryEntry
	Transaction(ctx context.Context, id string) (domain.HistoryEntry, error)
	ClearHistory(ctx context.Context) storage.Status
}

// EventSource hands out logout subscriptions.
type EventSource interface {
	Subscribe(buffer int) *events.Subscription
}

//
// Handler wiring
//

// LoginDefaults fills fields the login form may leave out.
type LoginDefaults struct {
	Username string
	Commerce int64
}

// Handlers groups the portal endpoints.
type Handlers struct {
	session  SessionService
	portal   PortalService
	events   EventSource
	defaults LoginDefaults
}

// New constructs Handlers bound to the given services.
func New(session SessionService, portal PortalService, ev EventSource, defaults LoginDefaults) *Handlers {
	return &Handlers{session: session, portal: portal, events: ev, defaults: defaults}
}

//
// Helpers
//

// isTruthy reports whether a query flag is set ("1", "true", "yes", "on").
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// atoiDefault parses s as an int, returning def when s is empty or invalid.
func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

// backendFailure translates a gateway error. A backend that could not be
// reached is a 502 backend_unavailable; an error reply keeps the backend's
// message and becomes 502 backend_error, except 401 which is passed on.
// It reports false when err is not a gateway error.
func backendFailure(c *gin.Context, err error) bool {
	apiErr, isAPI := gateway.AsAPIError(err)
	if !isAPI {
		return false
	}
	switch {
	case apiErr.Transport():
		fail(c, http.StatusBadGateway, ErrCodeBackendUnavailable, apiErr.Message)
	case apiErr.Status == http.StatusUnauthorized:
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, apiErr.Message)
	default:
		fail(c, http.StatusBadGateway, ErrCodeBackendError, apiErr.Message)
	}
	return true
}

func isOutcome(err error, kind error) (*services.OutcomeError, bool) {
	var oe *services.OutcomeError
	if errors.As(err, &oe) && errors.Is(oe.Kind, kind) {
		return oe, true
	}
	return nil, false
}
