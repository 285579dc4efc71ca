// Package trace generates the short correlation token attached to every
// top-up request.
package trace

import (
	"strings"

	"github.com/google/uuid"
)

// MaxLen is the upper bound on a generated trace.
const MaxLen = 12

// New returns a fresh trace: the leading part of a random UUID, lower-cased
// and without hyphens. It is not a security token; a collision only affects
// how history is displayed.
func New() string {
	id := uuid.NewString()[:MaxLen]
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}
