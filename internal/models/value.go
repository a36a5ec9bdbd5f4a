package models

import "time"

// Kind tags a source column value
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFixedPoint
	KindText
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFixedPoint:
		return "fixed_point"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Value one nullable scalar read from the data source.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
	Time  time.Time
}

func Null() Value { return Value{Kind: KindNull} }
func Integer(n int64) Value { return Value{Kind: KindInteger, Int: n} }
func FixedPoint(f float64) Value { return Value{Kind: KindFixedPoint, Float: f} }
func Text(s string) Value { return Value{Kind: KindText, Text: s} }
func Timestamp(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t} }

// IsNull reports whether the value is absent
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// RawRow one joined tuple keyed by output column alias
type RawRow map[string]Value

// Get returns the value for alias, Null when the column is missing
func (r RawRow) Get(alias string) Value {
	if v, ok := r[alias]; ok {
		return v
	}
	return Null()
}
