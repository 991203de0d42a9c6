package sex

import "strconv"

// ValueKind tags the sum type Value implements (spec §3, §4.6).
type ValueKind int

const (
	KindInt ValueKind = iota
	KindReal
	KindString
	KindBool
	KindError
)

// ErrorKind enumerates in-band evaluation failures (spec §7). These are
// always carried as Value, never panicked or returned as Go errors: the
// evaluator is total.
type ErrorKind int

const (
	MissingField ErrorKind = iota
	TypeMismatch
	BadRegex
	DivideByZero
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case TypeMismatch:
		return "type mismatch"
	case BadRegex:
		return "bad regex"
	case DivideByZero:
		return "divide by zero"
	default:
		return "error"
	}
}

// Value is the tagged union produced by evaluation: Int, Real, String,
// Bool, or Error(kind). Only the field matching Kind is meaningful.
type Value struct {
	Kind    ValueKind
	Int     int64
	Real    float64
	Str     string
	Bool    bool
	ErrKind ErrorKind
}

func IntValue(n int64) Value     { return Value{Kind: KindInt, Int: n} }
func RealValue(f float64) Value  { return Value{Kind: KindReal, Real: f} }
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func ErrorValue(k ErrorKind) Value { return Value{Kind: KindError, ErrKind: k} }

// IsError reports whether v is an Error value.
func (v Value) IsError() bool { return v.Kind == KindError }

// String renders v the way string concatenation (`&`) does: numbers in
// their canonical decimal form, booleans as "true"/"false", errors as
// an empty string (an error value should never actually reach
// stringification in a well-formed evaluation, since & propagates
// errors before this point — see evalBinary).
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// coerceNumeric attempts to read v as a number, returning (intPart,
// realPart, isReal, ok). A String value coerces if it parses as an
// integer or real literal; Bool and Error values never coerce.
func (v Value) coerceNumeric() (i int64, r float64, isReal bool, ok bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, 0, false, true
	case KindReal:
		return 0, v.Real, true, true
	case KindString:
		if n, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return n, 0, false, true
		}
		if f, err := strconv.ParseFloat(v.Str, 64); err == nil {
			return 0, f, true, true
		}
		return 0, 0, false, false
	default:
		return 0, 0, false, false
	}
}

// truthy implements the top-level / logical-operand coercion to boolean
// of spec §4.6: Bool itself; non-zero numeric true; non-empty string
// true; Error(MissingField) false; any other Error propagates (a non-nil
// propagate signals "do not coerce, propagate this value instead").
func (v Value) truthy() (b bool, propagate *Value) {
	switch v.Kind {
	case KindBool:
		return v.Bool, nil
	case KindInt:
		return v.Int != 0, nil
	case KindReal:
		return v.Real != 0, nil
	case KindString:
		return v.Str != "", nil
	case KindError:
		if v.ErrKind == MissingField {
			return false, nil
		}
		cp := v
		return false, &cp
	default:
		return false, nil
	}
}
