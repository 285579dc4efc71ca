package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/storage"
	"github.com/tbourn/go-topup-portal/internal/trace"
	"github.com/tbourn/go-topup-portal/internal/validate"
)

// UnknownSupplier labels a purchase whose product code is not in the
// supplier list.
const UnknownSupplier = "Unknown"

// Recharger is the backend contract TopUpService needs.
type Recharger interface {
	FindSuppliers(ctx context.Context, pointOfSale string) (*FindSuppliersResponse, error)
	Buy(ctx context.Context, req domain.TopUpRequest, supplierLabel string) (*BuyResponse, error)
}

// Site holds the fixed values sent with every purchase. They are passed
// through to the backend as configured.
type Site struct {
	PointOfSale string
	City        string
	Latitude    string
	Longitude   string
}

// SuppliersResult is the supplier list offered to the operator. Stale is set
// when the fetch failed and the list comes from the cache; Warning then
// holds the fetch failure message.
type SuppliersResult struct {
	Suppliers []domain.Supplier `json:"suppliers"`
	Cached    bool              `json:"cached"`
	Stale     bool              `json:"stale"`
	Warning   string            `json:"warning,omitempty"`
}

// TopUpService runs the portal flows: load suppliers with the local cache
// in front of the backend, submit a top-up and keep the transaction history.
type TopUpService struct {
	Recharge Recharger
	Store    *storage.Store
	Site     Site

	// NewTrace generates the per-request trace.
	NewTrace func() string

	log zerolog.Logger
}

// NewTopUpService constructs a TopUpService.
func NewTopUpService(r Recharger, st *storage.Store, site Site) *TopUpService {
	return &TopUpService{
		Recharge: r,
		Store:    st,
		Site:     site,
		NewTrace: trace.New,
		log:      log.Logger.With().Str("component", "topup").Logger(),
	}
}

// SetLogger replaces the service logger.
func (s *TopUpService) SetLogger(l zerolog.Logger) { s.log = l }

// Suppliers returns the supplier list. A fresh cache entry is returned as is
// unless refresh is set. Otherwise the backend is asked; a successful reply
// replaces the cache, and a failure falls back to the cache read before the
// fetch. With nothing to fall back on the failure is returned as an
// *OutcomeError wrapping ErrSuppliersUnavailable.
func (s *TopUpService) Suppliers(ctx context.Context, refresh bool) (SuppliersResult, error) {
	cached, st := s.Store.Suppliers(ctx)
	if st == storage.StatusOK && !refresh {
		return SuppliersResult{Suppliers: cached, Cached: true}, nil
	}

	resp, err := s.Recharge.FindSuppliers(ctx, s.Site.PointOfSale)
	if err == nil && resp.Success {
		if st := s.Store.SetSuppliers(ctx, resp.Data); st != storage.StatusOK {
			s.log.Warn().Str("status", st.String()).Msg("supplier cache not updated")
		}
		return SuppliersResult{Suppliers: resp.Data}, nil
	}

	var fail *OutcomeError
	if err != nil {
		fail = outcome(ErrSuppliersUnavailable, err.Error(), "", MsgSuppliersFailed)
		fail.Cause = err
	} else {
		fail = outcome(ErrSuppliersUnavailable, resp.Message, resp.Code, MsgSuppliersNotListed)
	}

	if st == storage.StatusOK && len(cached) > 0 {
		s.log.Warn().Str("reason", fail.Message).Int("cached", len(cached)).Msg("serving stale suppliers")
		return SuppliersResult{Suppliers: cached, Cached: true, Stale: true, Warning: fail.Message}, nil
	}
	return SuppliersResult{Suppliers: []domain.Supplier{}}, fail
}

// TopUp validates form and buys the top-up. It returns:
//   - *ValidationError when the form is rejected (nothing is sent);
//   - the ticket and an *OutcomeError wrapping ErrDeclined when the backend
//     declines the purchase;
//   - *gateway.APIError when the backend could not be reached or failed.
//
// Only successful purchases are added to the history.
func (s *TopUpService) TopUp(ctx context.Context, form validate.Form) (*domain.Ticket, error) {
	if errs := validate.TopUpForm(form); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	pos, err := strconv.ParseInt(s.Site.PointOfSale, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("point of sale %q: %w", s.Site.PointOfSale, err)
	}

	req := domain.TopUpRequest{
		PointOfSale:           pos,
		Terminal:              form.Terminal,
		TransactionalPassword: form.TransactionalPassword,
		Number:                form.Phone,
		Amount:                int64(validate.ParseAmount(form.Amount)),
		Trace:                 s.NewTrace(),
		ProductCode:           form.Supplier,
		City:                  s.Site.City,
		Latitude:              s.Site.Latitude,
		Longitude:             s.Site.Longitude,
	}
	label := s.supplierName(ctx, form.Supplier)

	resp, err := s.Recharge.Buy(ctx, req, label)
	if err != nil {
		return nil, err
	}
	ticket := resp.Data.Ticket

	if !resp.Success {
		s.log.Info().Str("trace", req.Trace).Str("code", resp.Code).Msg("top-up declined")
		return &ticket, outcome(ErrDeclined, resp.Message, resp.Code, MsgTransactionFailed)
	}

	if _, st := s.Store.AddTransaction(ctx, domain.NewHistoryEntry(req.Trace, ticket, label)); st != storage.StatusOK {
		s.log.Warn().Str("trace", req.Trace).Str("status", st.String()).Msg("transaction not persisted")
	}
	s.log.Info().Str("trace", req.Trace).Str("product", req.ProductCode).Msg("top-up completed")
	return &ticket, nil
}

// supplierName labels productCode from the cached list. It never calls the
// backend.
func (s *TopUpService) supplierName(ctx context.Context, productCode string) string {
	list, st := s.Store.Suppliers(ctx)
	if st != storage.StatusOK {
		return UnknownSupplier
	}
	for _, sp := range list {
		if sp.ProductCode == productCode {
			return sp.Name
		}
	}
	return UnknownSupplier
}

// History returns up to limit entries, newest first. limit <= 0 means all.
func (s *TopUpService) History(ctx context.Context, limit int) []domain.HistoryEntry {
	list, _ := s.Store.History(ctx)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// Transaction looks up one history entry by id.
func (s *TopUpService) Transaction(ctx context.Context, id string) (domain.HistoryEntry, error) {
	e, ok := s.Store.Transaction(ctx, id)
	if !ok {
		return domain.HistoryEntry{}, ErrTransactionNotFound
	}
	return e, nil
}

// ClearHistory removes every history entry.
func (s *TopUpService) ClearHistory(ctx context.Context) storage.Status {
	return s.Store.ClearHistory(ctx)
}
