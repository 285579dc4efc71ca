package gateway

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// Fallback messages used when the failure carries nothing better.
const (
	DefaultErrorMessage    = "An error occurred. Please try again."
	NetworkErrorMessage    = "Network error. Please check your internet connection."
	UnexpectedErrorMessage = "An unexpected error occurred."
)

// APIError is the only error type returned by the gateway. Status 0 means the
// backend was never heard from (connectivity, request construction, or an
// unreadable reply); any other value is the HTTP status the server sent.
// Message is always set and safe to show to the operator.
type APIError struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

// Error returns the user-facing message.
func (e *APIError) Error() string { return e.Message }

// Unwrap exposes the underlying transport or encoding error, if any.
func (e *APIError) Unwrap() error { return e.cause }

// Transport reports whether the failure happened before a server reply.
func (e *APIError) Transport() bool { return e.Status == 0 }

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// fromResponse maps an error reply. The body is read loosely: message and
// code are taken when present, and a JSON object body becomes Details.
func fromResponse(status int, body []byte) *APIError {
	e := &APIError{Status: status, Message: DefaultErrorMessage}
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return e
	}
	if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
		e.Message = m.String()
	}
	if c := gjson.GetBytes(body, "code"); c.Exists() && c.String() != "" {
		e.Code = c.String()
	}
	if gjson.ParseBytes(body).IsObject() {
		var details map[string]any
		if err := json.Unmarshal(body, &details); err == nil {
			e.Details = details
		}
	}
	return e
}

// fromTransport maps a request that was sent but got no usable reply.
func fromTransport(err error) *APIError {
	return &APIError{Status: 0, Message: NetworkErrorMessage, cause: err}
}

// fromLocal maps a failure on our side of the wire.
func fromLocal(err error) *APIError {
	msg := UnexpectedErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Status: 0, Message: msg, cause: err}
}
