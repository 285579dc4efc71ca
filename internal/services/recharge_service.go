package services

import (
	"context"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/gateway"
)

// FindSuppliersResponse is the supplier listing in domain terms. Data is
// never nil.
type FindSuppliersResponse struct {
	Success bool
	Data    []domain.Supplier
	Message string
	Code    string
}

// BuyResult is the payload of a purchase reply.
type BuyResult struct {
	Ticket  domain.Ticket
	Balance *float64
}

// BuyResponse is the purchase outcome in domain terms. A declined purchase
// has Success=false and a ticket with status failed.
type BuyResponse struct {
	Success bool
	Data    BuyResult
	Message string
	Code    string
}

type rawSupplier struct {
	SupplierCode        looseString `json:"supplierCode"`
	SupplierDescription string      `json:"supplierDescription"`
	SupplierLogo        string      `json:"supplierLogo"`
}

type rawFindSuppliersResponse struct {
	State   bool        `json:"state"`
	Message string      `json:"message"`
	Code    looseString `json:"code"`
	Data    struct {
		Suppliers []rawSupplier `json:"suppliers"`
	} `json:"data"`
}

type rawBuyResponse struct {
	State   bool        `json:"state"`
	Message string      `json:"message"`
	Code    looseString `json:"code"`
	Data    struct {
		Date              looseString `json:"date"`
		TransactionID     looseString `json:"transactionId"`
		AuthorizationCode looseString `json:"authorizationCode"`
		Message           string      `json:"message"`
		Balance           looseFloat  `json:"balance"`
	} `json:"data"`
}

type findSuppliersRequest struct {
	PointOfSale string `json:"pointOfSale"`
}

// RechargeEndpoints names the backend paths used by RechargeService.
type RechargeEndpoints struct {
	FindSuppliers string
	Buy           string
}

// RechargeService queries suppliers and buys top-ups.
type RechargeService struct {
	Client    *gateway.Client
	Endpoints RechargeEndpoints
}

// NewRechargeService constructs a RechargeService.
func NewRechargeService(c *gateway.Client, e RechargeEndpoints) *RechargeService {
	return &RechargeService{Client: c, Endpoints: e}
}

// FindSuppliers lists the suppliers available to pointOfSale.
func (s *RechargeService) FindSuppliers(ctx context.Context, pointOfSale string) (*FindSuppliersResponse, error) {
	raw, err := gateway.Post[rawFindSuppliersResponse](ctx, s.Client, s.Endpoints.FindSuppliers,
		findSuppliersRequest{PointOfSale: pointOfSale})
	if err != nil {
		return nil, err
	}

	list := make([]domain.Supplier, 0, len(raw.Data.Suppliers))
	for _, r := range raw.Data.Suppliers {
		list = append(list, domain.Supplier{
			ID:          string(r.SupplierCode),
			Name:        r.SupplierDescription,
			ProductCode: string(r.SupplierCode),
			Description: r.SupplierDescription,
			Logo:        r.SupplierLogo,
		})
	}
	return &FindSuppliersResponse{
		Success: raw.State,
		Data:    list,
		Message: raw.Message,
		Code:    string(raw.Code),
	}, nil
}

// Buy submits req. The ticket echoes the number, amount and product code of
// req and takes date, ids and message from the reply. supplierLabel falls
// back to the product code. A declined purchase resolves normally.
func (s *RechargeService) Buy(ctx context.Context, req domain.TopUpRequest, supplierLabel string) (*BuyResponse, error) {
	raw, err := gateway.Post[rawBuyResponse](ctx, s.Client, s.Endpoints.Buy, req)
	if err != nil {
		return nil, err
	}

	if supplierLabel == "" {
		supplierLabel = req.ProductCode
	}
	status := domain.TicketFailed
	if raw.State {
		status = domain.TicketSuccess
	}
	msg := raw.Data.Message
	if msg == "" {
		msg = raw.Message
	}

	balance := raw.Data.Balance.Ptr()
	ticket := domain.Ticket{
		Date:              string(raw.Data.Date),
		TransactionID:     string(raw.Data.TransactionID),
		AuthorizationCode: string(raw.Data.AuthorizationCode),
		Number:            req.Number,
		Amount:            req.Amount,
		Supplier:          supplierLabel,
		ProductCode:       req.ProductCode,
		Status:            status,
		Balance:           balance,
		Message:           msg,
	}
	return &BuyResponse{
		Success: raw.State,
		Data:    BuyResult{Ticket: ticket, Balance: balance},
		Message: raw.Message,
		Code:    string(raw.Code),
	}, nil
}
