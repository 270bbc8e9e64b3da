package mysqlz

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type tag of a Value
type Kind uint8

// KindNull represents SQL NULL
// KindBool represents a boolean
// KindInt represents a signed integer
// KindFloat represents a floating point number
// KindString represents a string (also used for raw bytes)
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns the name of the kind (e.g. "int")
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a scalar value: null, bool, int, float or string. The zero
// Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Null returns a NULL Value
func Null() Value { return Value{} }

// Bool returns a boolean Value
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// Int returns an integer Value
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float Value
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value
func String(s string) Value { return Value{kind: KindString, s: s} }

// ValueOf converts a Go scalar into a Value. It fails with ErrTypeMismatch
// for anything that is not nil, a bool, a number, a string or a byte slice.
func ValueOf(in interface{}) (Value, error) {
	switch v := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return uintValue(uint64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return uintValue(v), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case []byte:
		if v == nil {
			return Null(), nil
		}
		return String(string(v)), nil
	default:
		return Value{}, fmt.Errorf("%w: value of type %T is not scalar or nil", ErrTypeMismatch, in)
	}
}

// uintValue keeps unsigned values that overflow int64 as their decimal text
func uintValue(u uint64) Value {
	if u > 1<<63-1 {
		return String(strconv.FormatUint(u, 10))
	}
	return Int(int64(u))
}

// Kind returns the type tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the value as a boolean. Numbers are true when non-zero,
// strings when they parse as a true boolean or a non-zero number.
func (v Value) Bool() (bool, error) {
	switch v.kind {
	case KindBool, KindInt:
		return v.i != 0, nil
	case KindFloat:
		return v.f != 0, nil
	case KindString:
		if b, err := strconv.ParseBool(strings.TrimSpace(v.s)); err == nil {
			return b, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrTypeMismatch, v.s)
		}
		return f != 0, nil
	default:
		return false, fmt.Errorf("%w: NULL is not a boolean", ErrTypeMismatch)
	}
}

// Int returns the value as an integer. Floats are truncated; strings must
// hold a number.
func (v Value) Int() (int64, error) {
	switch v.kind {
	case KindBool, KindInt:
		return v.i, nil
	case KindFloat:
		return int64(v.f), nil
	case KindString:
		return parseInt(v.s)
	default:
		return 0, fmt.Errorf("%w: NULL is not an integer", ErrTypeMismatch)
	}
}

// Float returns the value as a float; strings must hold a number.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindBool, KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	case KindString:
		return parseFloat(v.s)
	default:
		return 0, fmt.Errorf("%w: NULL is not a float", ErrTypeMismatch)
	}
}

// Str returns the text form of the value, the same text that is escaped
// when the value is quoted. NULL returns an empty string.
func (v Value) Str() string {
	switch v.kind {
	case KindBool, KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Interface returns the value as nil, bool, int64, float64 or string
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.i != 0
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String implements fmt.Stringer. NULL prints as "NULL".
func (v Value) String() string {
	if v.kind == KindNull {
		return "NULL"
	}
	return v.Str()
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, s)
	}
	return int64(f), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a float", ErrTypeMismatch, s)
	}
	return f, nil
}
