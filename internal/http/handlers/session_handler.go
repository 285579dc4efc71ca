package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/http/middleware"
	"github.com/tbourn/go-topup-portal/internal/session"
)

// LoginRequest is the JSON payload for opening a session. Username and
// Commerce fall back to the configured defaults when omitted.
type LoginRequest struct {
	Username string `json:"username" example:"operator01"`
	Password string `json:"password" example:"secret"`
	Commerce int64  `json:"commerce" example:"1001"`
}

// SessionView is the public shape of the session. The token never leaves
// the server.
type SessionView struct {
	Authenticated bool   `json:"authenticated"`
	Type          string `json:"type,omitempty" example:"Bearer"`
	Expiration    string `json:"expiration,omitempty" example:"2030-01-01T00:00:00Z"`
}

func viewOf(s domain.Session, valid bool) SessionView {
	if !valid {
		return SessionView{}
	}
	return SessionView{Authenticated: true, Type: s.Type, Expiration: s.Expiration}
}

// Login godoc
// @ID          login
// @Summary     Open a session
// @Description Authenticates the operator against the backend and persists the session.
// @Tags        Session
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     201   {object}  handlers.SessionView
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Login failed"
// @Failure     502   {object}  handlers.ErrorResponse  "Backend unavailable"
// @Router      /session [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	creds := domain.LoginCredentials{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Commerce: req.Commerce,
	}
	if creds.Username == "" {
		creds.Username = h.defaults.Username
	}
	if creds.Commerce == 0 {
		creds.Commerce = h.defaults.Commerce
	}
	if creds.Username == "" || creds.Password == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	s, err := h.session.Login(c.Request.Context(), creds)
	if err != nil {
		var loginErr *session.LoginError
		switch {
		case errors.As(err, &loginErr):
			fail(c, http.StatusUnauthorized, ErrCodeLoginFailed, loginErr.Message)
		case backendFailure(c, err):
		default:
			fail(c, http.StatusInternalServerError, ErrCodeStorageFailed, err.Error())
		}
		return
	}

	middleware.LoggerFrom(c).Info().Str("username", creds.Username).Msg("operator logged in")
	ok(c, http.StatusCreated, viewOf(s, true))
}

// GetSession godoc
// @ID          getSession
// @Summary     Session state
// @Description Reports whether a valid session exists. An expired session is ended on the spot.
// @Tags        Session
// @Produce     json
// @Success     200  {object}  handlers.SessionView
// @Router      /session [get]
func (h *Handlers) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	valid := h.session.IsTokenValid(ctx)
	ok(c, http.StatusOK, viewOf(h.session.State(ctx), valid))
}

// Logout godoc
// @ID          logout
// @Summary     End the session
// @Tags        Session
// @Success     204  {string}  string  "No Content"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /session [delete]
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context(), ""); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStorageFailed, err.Error())
		return
	}
	noContent(c)
}
