// Package domain defines the values that flow through the top-up portal:
// suppliers, top-up requests, tickets, history entries and the persisted
// session record. They carry JSON tags matching the backend wire format or
// the local storage format, whichever the value is persisted as.
package domain

import (
	"strings"
	"time"
)

// Supplier is a mobile carrier offered for top-up. Suppliers are immutable
// once fetched and are identified by ProductCode.
type Supplier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ProductCode string `json:"productCode"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

// LoginCredentials is the body of the auth endpoint.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Commerce int64  `json:"commerce"`
}

// TopUpRequest is the body of the buy endpoint. It is built fresh for every
// submission and Trace must be unique per request. The city and coordinate
// field names are the ones the backend expects.
type TopUpRequest struct {
	PointOfSale           int64  `json:"pointOfSale"`
	Terminal              string `json:"terminal"`
	TransactionalPassword string `json:"transactionalPassword"`
	Number                string `json:"number"`
	Amount                int64  `json:"amount"`
	Trace                 string `json:"trace"`
	ProductCode           string `json:"productCode"`
	City                  string `json:"Ciudad"`
	Latitude              string `json:"Latitud"`
	Longitude             string `json:"Longitud"`
}

// TicketStatus is the outcome recorded on a ticket.
type TicketStatus string

const (
	TicketSuccess TicketStatus = "success"
	TicketFailed  TicketStatus = "failed"
	TicketPending TicketStatus = "pending"
)

// Ticket is the receipt of a single top-up attempt. TransactionID is opaque.
type Ticket struct {
	Date              string       `json:"date"`
	TransactionID     string       `json:"transactionId"`
	AuthorizationCode string       `json:"authorizationCode"`
	Number            string       `json:"number"`
	Amount            int64        `json:"amount"`
	Supplier          string       `json:"supplier"`
	ProductCode       string       `json:"productCode"`
	Status            TicketStatus `json:"status"`
	Balance           *float64     `json:"balance,omitempty"`
	Message           string       `json:"message,omitempty"`
}

// HistoryEntry is one row of the local transaction log, derived from a
// Ticket. ID is the trace of the request that produced it.
type HistoryEntry struct {
	ID                string       `json:"id"`
	Date              string       `json:"date"`
	Number            string       `json:"number"`
	Amount            int64        `json:"amount"`
	Supplier          string       `json:"supplier"`
	SupplierName      string       `json:"supplierName"`
	AuthorizationCode string       `json:"authorizationCode"`
	TransactionID     string       `json:"transactionId"`
	Status            TicketStatus `json:"status"`
	ProductCode       string       `json:"productCode"`
}

// NewHistoryEntry derives a history entry from ticket.
func NewHistoryEntry(trace string, t Ticket, supplierName string) HistoryEntry {
	return HistoryEntry{
		ID:                trace,
		Date:              t.Date,
		Number:            t.Number,
		Amount:            t.Amount,
		Supplier:          t.ProductCode,
		SupplierName:      supplierName,
		AuthorizationCode: t.AuthorizationCode,
		TransactionID:     t.TransactionID,
		Status:            t.Status,
		ProductCode:       t.ProductCode,
	}
}

// Session is the persisted authentication record. Its fields are
// all-or-nothing: either every field is set and IsAuthenticated is true, or
// it is the zero value.
type Session struct {
	Token           string `json:"token"`
	Type            string `json:"type"`
	Expiration      string `json:"expiration"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Empty reports whether s carries no credential.
func (s Session) Empty() bool {
	return strings.TrimSpace(s.Token) == ""
}

// timestampLayouts are the formats the backend has been seen to emit. A nil
// loc means time.Local, resolved at parse time.
var timestampLayouts = []struct {
	layout string
	loc    *time.Location
}{
	{time.RFC3339Nano, time.UTC},
	{"2006-01-02T15:04:05", nil},
	{"2006-01-02 15:04:05", nil},
	{"2006-01-02", time.UTC},
}

// ParseTimestamp parses a backend timestamp. A date-time without a zone is
// read in local time; a bare date is midnight UTC.
func ParseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range timestampLayouts {
		loc := l.loc
		if loc == nil {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(l.layout, v, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
