package services

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// looseString decodes any JSON scalar as its string form. The backend is not
// consistent about quoting codes and ids; null decodes to "".
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	*s = looseString(gjson.ParseBytes(b).String())
	return nil
}

// looseFloat decodes a JSON number or numeric string. null, "" and values
// that are not numeric leave it unset.
type looseFloat struct {
	v  float64
	ok bool
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.Number:
		*f = looseFloat{v: r.Num, ok: true}
	case gjson.String:
		if v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64); err == nil {
			*f = looseFloat{v: v, ok: true}
		} else {
			*f = looseFloat{}
		}
	default:
		*f = looseFloat{}
	}
	return nil
}

// Ptr returns the value, or nil when unset.
func (f looseFloat) Ptr() *float64 {
	if !f.ok {
		return nil
	}
	v := f.v
	return &v
}
