package endpoint

import (
	"encoding/json"
	"strconv"
)

// Kind tags the dynamic type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindJSON
)

// Value is a nullable scalar query parameter. KindJSON carries an arbitrary
// structure and is only meaningful for the filter/orderBy keys.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	j    any
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func JSON(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindJSON, j: v}
}

// StringPtr maps a nil pointer to Null.
func StringPtr(s *string) Value {
	if s == nil {
		return Null()
	}
	return String(*s)
}

// IntPtr maps a nil pointer to Null.
func IntPtr(i *int64) Value {
	if i == nil {
		return Null()
	}
	return Int(*i)
}

// Of converts a loosely typed Go value. Unsupported types become KindJSON.
func Of(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case *string:
		return StringPtr(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case *int64:
		return IntPtr(t)
	case uint:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case bool:
		return Bool(t)
	default:
		return JSON(t)
	}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Raw renders the value as a plain scalar.
func (v Value) Raw() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindJSON:
		b, err := json.Marshal(v.j)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// JSONText renders the value as JSON text, e.g. a string gains quotes.
func (v Value) JSONText() string {
	var x any
	switch v.kind {
	case KindString:
		x = v.s
	case KindInt:
		x = v.i
	case KindFloat:
		x = v.f
	case KindBool:
		x = v.b
	case KindJSON:
		x = v.j
	default:
		return "null"
	}
	b, err := json.Marshal(x)
	if err != nil {
		return "null"
	}
	return string(b)
}

// MarshalYAML lets request files round-trip their query values.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindBool:
		return v.b, nil
	case KindJSON:
		return v.j, nil
	default:
		return nil, nil
	}
}
