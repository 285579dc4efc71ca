package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-topup-portal/internal/http/middleware"
	"github.com/tbourn/go-topup-portal/internal/services"
	"github.com/tbourn/go-topup-portal/internal/validate"
)

// ListSuppliers godoc
// @ID          listSuppliers
// @Summary     List suppliers
// @Description Serves the cached list while it is fresh. With refresh=true the backend is asked again; on failure the cached list is returned with stale=true and a warning.
// @Tags        Suppliers
// @Produce     json
// @Param       refresh  query     bool  false  "Bypass the cache"
// @Success     200      {object}  services.SuppliersResult
// @Failure     401      {object}  handlers.ErrorResponse  "No session"
// @Failure     502      {object}  handlers.ErrorResponse  "Suppliers unavailable"
// @Router      /suppliers [get]
func (h *Handlers) ListSuppliers(c *gin.Context) {
	res, err := h.portal.Suppliers(c.Request.Context(), isTruthy(c.Query("refresh")))
	if err != nil && len(res.Suppliers) == 0 {
		fail(c, http.StatusBadGateway, ErrCodeSuppliersUnavailable, err.Error())
		return
	}
	if res.Stale {
		middleware.LoggerFrom(c).Warn().Str("warning", res.Warning).Msg("serving stale suppliers")
	}
	ok(c, http.StatusOK, res)
}

// CreateTopUp godoc
// @ID          createTopUp
// @Summary     Submit a top-up
// @Description Validates the form, sends the purchase and records it in the history on success. Only one submission runs at a time.
// @Tags        TopUps
// @Accept      json
// @Produce     json
// @Param       X-Transactional-Password  header    string         false  "Used when the body omits transactionalPassword"
// @Param       body                      body      validate.Form  true   "Top-up form"
// @Success     201  {object}  domain.Ticket
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "No session"
// @Failure     409  {object}  handlers.ErrorResponse  "A top-up is already in progress"
// @Failure     422  {object}  handlers.ErrorResponse  "Invalid form or declined purchase"
// @Failure     502  {object}  handlers.ErrorResponse  "Backend unavailable"
// @Router      /topups [post]
func (h *Handlers) CreateTopUp(c *gin.Context) {
	var form validate.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if form.TransactionalPassword == "" {
		form.TransactionalPassword = c.GetHeader(middleware.HeaderTransactionalPassword)
	}

	ticket, err := h.portal.TopUp(c.Request.Context(), form)
	if err == nil {
		middleware.ObserveTopUp(middleware.TopUpSuccess)
		ok(c, http.StatusCreated, ticket)
		return
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		middleware.ObserveTopUp(middleware.TopUpInvalid)
		failWith(c, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    ErrCodeValidationFailed,
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
		return
	}
	if oe, declined := isOutcome(err, services.ErrDeclined); declined {
		middleware.ObserveTopUp(middleware.TopUpDeclined)
		failWith(c, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    ErrCodeDeclined,
			Message: oe.Message,
			Ticket:  ticket,
		})
		return
	}

	middleware.ObserveTopUp(middleware.TopUpFailed)
	if backendFailure(c, err) {
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}
