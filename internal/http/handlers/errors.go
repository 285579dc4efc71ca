// Package handlers defines the HTTP-layer error codes of the portal API.
//
// Codes are lowercase snake_case and stable; clients branch on them. Generic
// codes mirror HTTP status semantics, domain codes describe top-up outcomes
// that the status alone cannot convey (a 422 can be a form error or a
// declined purchase).
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "declined",
//	  "message": "Insufficient balance"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeLoginFailed          = "login_failed"
	ErrCodeValidationFailed     = "validation_failed"
	ErrCodeDeclined             = "declined"
	ErrCodeSuppliersUnavailable = "suppliers_unavailable"
	ErrCodeBackendUnavailable   = "backend_unavailable"
	ErrCodeBackendError         = "backend_error"
	ErrCodeStorageFailed        = "storage_failed"
)
