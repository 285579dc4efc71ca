// Package services holds the top-up domain services: authentication, supplier
// lookup and purchase against the backend, and the orchestration the portal
// runs on top of them.
//
// Gateway failures cross this layer unchanged as *gateway.APIError. The
// values below cover the outcomes the services decide themselves; handlers
// translate them into status codes.
package services

import (
	"errors"
	"strings"

	"github.com/tbourn/go-topup-portal/internal/validate"
)

var (
	// ErrDeclined is returned when the backend answered a purchase with
	// state=false. The ticket is still returned next to it.
	ErrDeclined = errors.New("transaction declined")

	// ErrSuppliersUnavailable is returned when suppliers could neither be
	// fetched nor read from the cache.
	ErrSuppliersUnavailable = errors.New("suppliers unavailable")

	// ErrInvalidForm wraps every *ValidationError.
	ErrInvalidForm = errors.New("invalid top-up form")

	// ErrTransactionNotFound is returned for an unknown history id.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Fallback messages for outcomes the backend did not describe.
const (
	MsgTransactionFailed  = "Transaction failed"
	MsgSuppliersFailed    = "Failed to load suppliers"
	MsgSuppliersNotListed = "Failed to fetch suppliers"
	MsgInvalidForm        = "Please fix the highlighted fields before submitting."
)

// ValidationError carries per-field results of a rejected form. It never
// reaches the network.
type ValidationError struct {
	Fields validate.Errors
}

func (e *ValidationError) Error() string {
	return MsgInvalidForm
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidForm }

// OutcomeError is a failure the backend explained in its reply: a declined
// purchase or an unsuccessful supplier listing.
// Cause, when set, is the gateway error behind it.
type OutcomeError struct {
	Kind    error
	Message string
	Code    string
	Cause   error
}

func (e *OutcomeError) Error() string { return e.Message }

func (e *OutcomeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func outcome(kind error, message, code, fallback string) *OutcomeError {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	return &OutcomeError{Kind: kind, Message: message, Code: code}
}
