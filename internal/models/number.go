package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number a numeric document attribute that keeps whether the source was fixed point.
// Integers encode as JSON integers, fixed point values as floats ("5.0", not "5").
type Number struct {
	Int        int64
	Float      float64
	Fractional bool
}

// IntNumber returns an integer Number
func IntNumber(n int64) Number {
	return Number{Int: n}
}

// FloatNumber returns a fixed point Number
func FloatNumber(f float64) Number {
	return Number{Float: f, Fractional: true}
}

// String formats the number the same way it is encoded
func (n Number) String() string {
	if !n.Fractional {
		return strconv.FormatInt(n.Int, 10)
	}
	s := strconv.FormatFloat(n.Float, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// IsZero reports whether the number is 0
func (n Number) IsZero() bool {
	if n.Fractional {
		return n.Float == 0
	}
	return n.Int == 0
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s := raw.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = IntNumber(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = FloatNumber(f)
	return nil
}
