package rec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TypeSpecKind enumerates the %type value kinds recognized by spec §3.
type TypeSpecKind int

const (
	TypeString TypeSpecKind = iota
	TypeInt
	TypeBool
	TypeRange
	TypeReal
	TypeSize
	TypeLine
	TypeRegexp
	TypeDate
	TypeEmail
	TypeEnum
	TypeField
	TypeUUID
)

// TypeSpec is a closed sum type describing one %type declaration. Only
// Int, Real, Bool, Range, Regexp, Enum and Line are enforced by the
// default Validate (spec §4.3); the rest are recognized syntactically and
// otherwise treated as plain strings unless ValidateStrict is used.
type TypeSpec struct {
	Kind          TypeSpecKind
	RangeLo       int
	RangeHi       int
	EnumValues    []string
	RegexpPattern string
	SizeMax       int
	Raw           string
	compiled      *regexp.Regexp
}

var typeKeywords = map[string]TypeSpecKind{
	"int":    TypeInt,
	"bool":   TypeBool,
	"real":   TypeReal,
	"line":   TypeLine,
	"date":   TypeDate,
	"email":  TypeEmail,
	"field":  TypeField,
	"uuid":   TypeUUID,
	"range":  TypeRange,
	"size":   TypeSize,
	"regexp": TypeRegexp,
	"enum":   TypeEnum,
}

// parseTypeSpec parses the type-spec portion of a %type (or %typedef)
// declaration, e.g. "int", "range 1 5", "enum a b c", "regexp /foo.*/".
// typedefs resolves named aliases previously declared with %typedef.
func parseTypeSpec(raw string, typedefs map[string]TypeSpec) (TypeSpec, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return TypeSpec{}, fmt.Errorf("empty type-spec")
	}
	keyword := tokens[0]
	args := tokens[1:]

	kind, known := typeKeywords[keyword]
	if !known {
		if alias, ok := typedefs[keyword]; ok {
			return alias, nil
		}
		return TypeSpec{}, fmt.Errorf("unknown type %q", keyword)
	}

	spec := TypeSpec{Kind: kind, Raw: raw}
	switch kind {
	case TypeRange:
		switch len(args) {
		case 1:
			hi, err := strconv.Atoi(args[0])
			if err != nil {
				return TypeSpec{}, fmt.Errorf("invalid range bound %q", args[0])
			}
			spec.RangeLo, spec.RangeHi = 0, hi
		case 2:
			lo, err1 := strconv.Atoi(args[0])
			hi, err2 := strconv.Atoi(args[1])
			if err1 != nil || err2 != nil {
				return TypeSpec{}, fmt.Errorf("invalid range bounds %q %q", args[0], args[1])
			}
			spec.RangeLo, spec.RangeHi = lo, hi
		default:
			return TypeSpec{}, fmt.Errorf("range requires one or two bounds, got %d", len(args))
		}
	case TypeSize:
		if len(args) != 1 {
			return TypeSpec{}, fmt.Errorf("size requires exactly one bound")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return TypeSpec{}, fmt.Errorf("invalid size bound %q", args[0])
		}
		spec.SizeMax = n
	case TypeRegexp:
		if len(args) != 1 {
			return TypeSpec{}, fmt.Errorf("regexp requires exactly one pattern")
		}
		pat := args[0]
		pat = strings.TrimPrefix(pat, "/")
		pat = strings.TrimSuffix(pat, "/")
		re, err := regexp.Compile(pat)
		if err != nil {
			return TypeSpec{}, fmt.Errorf("invalid regexp %q: %w", pat, err)
		}
		spec.RegexpPattern = pat
		spec.compiled = re
	case TypeEnum:
		if len(args) == 0 {
			return TypeSpec{}, fmt.Errorf("enum requires at least one value")
		}
		spec.EnumValues = args
	}
	return spec, nil
}

var intRx = regexp.MustCompile(`^[+-]?(0[xX][0-9a-fA-F]+|0[0-7]*|[1-9][0-9]*)$`)
var realRx = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
var boolValues = map[string]bool{
	"yes": true, "no": true, "true": true, "false": true, "0": true, "1": true,
}
var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var fieldNameRx = regexp.MustCompile(`^%?[A-Za-z_][A-Za-z0-9_]*$`)

// checkKind reports whether value satisfies the enforced kinds of spec
// §4.3: int, real, bool, range, regexp, enum, line. Any other kind
// (including the strict-only ones) is always considered satisfied here;
// ValidateStrict layers the rest on top.
func (t TypeSpec) checkKind(value string) (ok bool, expected string) {
	switch t.Kind {
	case TypeInt:
		return intRx.MatchString(value), "integer"
	case TypeReal:
		return realRx.MatchString(value), "real number"
	case TypeBool:
		return boolValues[strings.ToLower(value)], "boolean (yes|no|true|false|0|1)"
	case TypeRange:
		n, err := parseIntLiteral(value)
		if err != nil {
			return false, fmt.Sprintf("integer in range %d..%d", t.RangeLo, t.RangeHi)
		}
		return n >= t.RangeLo && n <= t.RangeHi, fmt.Sprintf("integer in range %d..%d", t.RangeLo, t.RangeHi)
	case TypeRegexp:
		if t.compiled == nil {
			return false, fmt.Sprintf("match /%s/", t.RegexpPattern)
		}
		return t.compiled.MatchString(value), fmt.Sprintf("match /%s/", t.RegexpPattern)
	case TypeEnum:
		for _, v := range t.EnumValues {
			if v == value {
				return true, strings.Join(t.EnumValues, "|")
			}
		}
		return false, strings.Join(t.EnumValues, "|")
	case TypeLine:
		return !strings.Contains(value, "\n"), "single line"
	default:
		return true, ""
	}
}

func parseIntLiteral(s string) (int, error) {
	if !intRx.MatchString(s) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(s, "+"), ""))
}
