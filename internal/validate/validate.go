// Package validate implements the client-side rules applied to a top-up form
// before anything reaches the network: phone format, amount bounds and
// required fields.
//
// Every rule returns a Result value; nothing here panics or returns an error.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code is a stable, machine-readable validation failure.
type Code string

const (
	CodeRequired      Code = "REQUIRED"
	CodeInvalidFormat Code = "INVALID_FORMAT"
	CodeTooLow        Code = "TOO_LOW"
	CodeTooHigh       Code = "TOO_HIGH"
	CodeNotInteger    Code = "NOT_INTEGER"
)

const (
	// MinAmount and MaxAmount are inclusive bounds expressed in COP.
	MinAmount = 1000
	MaxAmount = 100000
)

var phoneRE = regexp.MustCompile(`^3\d{9}$`)

// amounts are rendered with thousands separators ("1,000").
var printer = message.NewPrinter(language.English)

// Result is the outcome of a single rule. The zero value is a failure.
type Result struct {
	OK      bool   `json:"valid"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok() Result { return Result{OK: true} }

func fail(code Code, msg string) Result {
	return Result{Code: code, Message: msg}
}

// Phone checks that value is a 10 digit mobile number starting with 3.
func Phone(value string) Result {
	if value == "" {
		return fail(CodeRequired, "Phone number is required")
	}
	if !phoneRE.MatchString(value) {
		return fail(CodeInvalidFormat, "Phone must start with 3 and be exactly 10 digits")
	}
	return ok()
}

// Amount checks the top-up amount. The order of checks is minimum (which also
// covers a missing value), maximum, then integrality, so 100000.5 reports
// TOO_HIGH rather than NOT_INTEGER.
func Amount(value float64) Result {
	if math.IsNaN(value) || value == 0 || value < MinAmount {
		return fail(CodeTooLow, printer.Sprintf("Amount must be at least %d COP", MinAmount))
	}
	if value > MaxAmount {
		return fail(CodeTooHigh, printer.Sprintf("Amount cannot exceed %d COP", MaxAmount))
	}
	if value != math.Trunc(value) {
		return fail(CodeNotInteger, "Amount must be a whole number")
	}
	return ok()
}

// ParseAmount converts raw form input to a number. Empty or unparsable input
// yields 0, which Amount reports as TOO_LOW.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// Required fails with CodeRequired when value is blank. label is used in the
// message ("Terminal is required").
func Required(label, value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail(CodeRequired, label+" is required")
	}
	return ok()
}
