package gateway

import "strings"

// SessionExpiredReason is the notice shown when the backend rejects the
// session on the auth endpoint.
const SessionExpiredReason = "Su sesión ha expirado por razones de seguridad. Por favor, inicie sesión nuevamente."

// ForbiddenAction is what the gateway does with a 403 reply.
type ForbiddenAction int

const (
	// ForbiddenWarn logs the 403 and leaves the session alone.
	ForbiddenWarn ForbiddenAction = iota
	// ForbiddenInvalidate clears the session and publishes a logout notice.
	ForbiddenInvalidate
	// ForbiddenIgnore leaves the session alone without a warning. Used for
	// endpoints known to reject valid tokens intermittently.
	ForbiddenIgnore
)

func (a ForbiddenAction) String() string {
	switch a {
	case ForbiddenInvalidate:
		return "invalidate"
	case ForbiddenIgnore:
		return "ignore"
	default:
		return "warn"
	}
}

// Rule binds endpoints containing Match to a 403 action. Reason is the logout
// notice for ForbiddenInvalidate.
type Rule struct {
	Match       string
	OnForbidden ForbiddenAction
	Reason      string
}

// Policies is an ordered rule table; the first matching rule wins and
// unmatched endpoints get ForbiddenWarn.
type Policies []Rule

// Lookup returns the rule that applies to endpoint.
func (p Policies) Lookup(endpoint string) Rule {
	for _, r := range p {
		if r.Match != "" && strings.Contains(endpoint, r.Match) {
			return r
		}
	}
	return Rule{OnForbidden: ForbiddenWarn}
}

// DefaultPolicies invalidates the session on 403 from the auth endpoint and
// ignores 403 from the supplier lookup, whose callers fall back to cached
// suppliers.
func DefaultPolicies(authEndpoint, findSuppliersEndpoint string) Policies {
	return Policies{
		{Match: authEndpoint, OnForbidden: ForbiddenInvalidate, Reason: SessionExpiredReason},
		{Match: findSuppliersEndpoint, OnForbidden: ForbiddenIgnore},
	}
}
