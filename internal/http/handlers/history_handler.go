package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/services"
	"github.com/tbourn/go-topup-portal/internal/storage"
)

// HistoryResponse wraps the local transaction log, newest first.
type HistoryResponse struct {
	Transactions []domain.HistoryEntry `json:"transactions"`
	Count        int                   `json:"count"`
}

// ListHistory godoc
// @ID          listHistory
// @Summary     Transaction history
// @Tags        History
// @Produce     json
// @Param       limit  query     int  false  "Maximum entries, 0 for all"  minimum(0)
// @Success     200    {object}  handlers.HistoryResponse
// @Failure     401    {object}  handlers.ErrorResponse  "No session"
// @Router      /history [get]
func (h *Handlers) ListHistory(c *gin.Context) {
	limit := atoiDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}
	list := h.portal.History(c.Request.Context(), limit)
	if list == nil {
		list = []domain.HistoryEntry{}
	}
	ok(c, http.StatusOK, HistoryResponse{Transactions: list, Count: len(list)})
}

// GetTransaction godoc
// @ID          getTransaction
// @Summary     One history entry
// @Tags        History
// @Produce     json
// @Param       id   path      string  true  "Trace of the request"
// @Success     200  {object}  domain.HistoryEntry
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown transaction"
// @Router      /history/{id} [get]
func (h *Handlers) GetTransaction(c *gin.Context) {
	e, err := h.portal.Transaction(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrTransactionNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, e)
}

// ClearHistory godoc
// @ID          clearHistory
// @Summary     Clear the history
// @Tags        History
// @Success     204  {string}  string  "No Content"
// @Failure     500  {object}  handlers.ErrorResponse  "Storage failure"
// @Router      /history [delete]
func (h *Handlers) ClearHistory(c *gin.Context) {
	if st := h.portal.ClearHistory(c.Request.Context()); st != storage.StatusOK {
		fail(c, http.StatusInternalServerError, ErrCodeStorageFailed, "history could not be cleared: "+st.String())
		return
	}
	noContent(c)
}
