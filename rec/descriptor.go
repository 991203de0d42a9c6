package rec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// ViolationKind enumerates the ways a Record can fail a Descriptor's
// constraints (spec §4.3 plus the %allowed/%size/%constraint supplements
// described in SPEC_FULL.md §3).
type ViolationKind int

const (
	MissingMandatory ViolationKind = iota
	TypeMismatch
	ProhibitedField
	NotAllowedField
	DuplicateKey
	UniquenessViolation
	SizeViolation
	ConstraintViolated
)

// Violation describes one failed constraint found by Validate,
// ValidateSet, or ValidateStrict.
type Violation struct {
	Kind     ViolationKind
	Field    string
	Value    string
	Expected string
	Message  string
}

func (v Violation) String() string {
	if v.Message != "" {
		return v.Message
	}
	switch v.Kind {
	case MissingMandatory:
		return fmt.Sprintf("missing mandatory field %q", v.Field)
	case TypeMismatch:
		return fmt.Sprintf("field %q value %q does not match expected %s", v.Field, v.Value, v.Expected)
	case ProhibitedField:
		return fmt.Sprintf("field %q is prohibited", v.Field)
	case NotAllowedField:
		return fmt.Sprintf("field %q is not in the allowed set", v.Field)
	case DuplicateKey:
		return fmt.Sprintf("duplicate key field %q", v.Field)
	case UniquenessViolation:
		return fmt.Sprintf("field %q value %q violates uniqueness", v.Field, v.Value)
	case SizeViolation:
		return fmt.Sprintf("record set size violates %s", v.Expected)
	case ConstraintViolated:
		return fmt.Sprintf("constraint %q violated", v.Expected)
	default:
		return "violation"
	}
}

// SizeOp is the comparison operator of a %size constraint.
type SizeOp int

const (
	SizeEQ SizeOp = iota
	SizeLT
	SizeLE
	SizeGT
	SizeGE
)

// SizeConstraint is the supplemental %size descriptor field: a bound on
// the number of records of this type in a RecordSet (grounded on
// original_source/tests/test_recfix.py's record-count checks).
type SizeConstraint struct {
	Op SizeOp
	N  int
}

func (sc SizeConstraint) String() string {
	ops := map[SizeOp]string{SizeEQ: "==", SizeLT: "<", SizeLE: "<=", SizeGT: ">", SizeGE: ">="}
	return fmt.Sprintf("%s %d", ops[sc.Op], sc.N)
}

func (sc SizeConstraint) satisfied(n int) bool {
	switch sc.Op {
	case SizeEQ:
		return n == sc.N
	case SizeLT:
		return n < sc.N
	case SizeLE:
		return n <= sc.N
	case SizeGT:
		return n > sc.N
	case SizeGE:
		return n >= sc.N
	default:
		return false
	}
}

// ConstraintEvaluator evaluates a %constraint SEX expression against a
// record. rec has no dependency on the sex package; the recutils root
// package wires a concrete implementation backed by sex.Compile/Eval so
// that this package stays usable standalone (spec §2's component
// independence between C3 and C4-C6).
type ConstraintEvaluator interface {
	EvalConstraint(expr string, r *Record, d *Descriptor) (bool, error)
}

// Descriptor is the parsed form of a %rec: record, carrying every
// recognized meta-field plus the raw, unrecognized ones for round-trip
// fidelity (spec §3).
type Descriptor struct {
	Type       string
	Mandatory  map[string]bool
	Key        string
	Unique     map[string]bool
	Allowed    map[string]bool
	Prohibit   map[string]bool
	Sort       []string
	Doc        string
	Types      map[string]TypeSpec
	Size       *SizeConstraint
	Constraint []string
	typedefs   map[string]TypeSpec
	raw        []Field
	source     *Record
}

// newDescriptor allocates a Descriptor with its maps initialized.
func newDescriptor(typeName string) *Descriptor {
	return &Descriptor{
		Type:      typeName,
		Mandatory: map[string]bool{},
		Unique:    map[string]bool{},
		Allowed:   map[string]bool{},
		Prohibit:  map[string]bool{},
		Types:     map[string]TypeSpec{},
		typedefs:  map[string]TypeSpec{},
	}
}

// buildDescriptor turns a descriptor Record (one whose first field is
// %rec) into a Descriptor, scanning its meta-fields top to bottom so
// %typedef aliases are visible to %type lines that follow them.
func buildDescriptor(r *Record) (*Descriptor, error) {
	if len(r.Fields) == 0 || r.Fields[0].Name != "%rec" {
		return nil, fmt.Errorf("%w", errMissingRecField)
	}
	typeName := strings.TrimSpace(r.Fields[0].Value)
	if typeName == "" {
		return nil, fmt.Errorf("%w: empty %%rec value", errBadDescriptorSyntax)
	}
	d := newDescriptor(typeName)
	d.source = r
	d.raw = r.Fields

	for _, f := range r.Fields[1:] {
		switch f.Name {
		case "%mandatory":
			for _, name := range strings.Fields(f.Value) {
				d.Mandatory[name] = true
			}
		case "%key":
			d.Key = strings.TrimSpace(f.Value)
		case "%unique":
			for _, name := range strings.Fields(f.Value) {
				d.Unique[name] = true
			}
		case "%allowed":
			for _, name := range strings.Fields(f.Value) {
				d.Allowed[name] = true
			}
		case "%prohibit":
			for _, name := range strings.Fields(f.Value) {
				d.Prohibit[name] = true
			}
		case "%sort":
			d.Sort = append(d.Sort, strings.Fields(f.Value)...)
		case "%doc":
			if d.Doc != "" {
				d.Doc += "\n"
			}
			d.Doc += f.Value
		case "%typedef":
			name, spec, err := parseTypedef(f.Value, d.typedefs)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", errBadDescriptorSyntax, err)
			}
			d.typedefs[name] = spec
		case "%type":
			names, spec, err := parseTypeLine(f.Value, d.typedefs)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", errBadDescriptorSyntax, err)
			}
			for _, n := range names {
				d.Types[n] = spec
			}
		case "%size":
			sc, err := parseSizeConstraint(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", errBadDescriptorSyntax, err)
			}
			d.Size = &sc
		case "%constraint":
			d.Constraint = append(d.Constraint, strings.TrimSpace(f.Value))
		default:
			// Unrecognized meta-field: preserved verbatim, no semantic effect.
		}
	}
	return d, nil
}

func parseTypedef(value string, typedefs map[string]TypeSpec) (string, TypeSpec, error) {
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return "", TypeSpec{}, fmt.Errorf("malformed %%typedef %q", value)
	}
	name := tokens[0]
	spec, err := parseTypeSpec(strings.Join(tokens[1:], " "), typedefs)
	if err != nil {
		return "", TypeSpec{}, err
	}
	return name, spec, nil
}

func parseTypeLine(value string, typedefs map[string]TypeSpec) ([]string, TypeSpec, error) {
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return nil, TypeSpec{}, fmt.Errorf("malformed %%type %q", value)
	}
	names := strings.Split(tokens[0], ",")
	spec, err := parseTypeSpec(strings.Join(tokens[1:], " "), typedefs)
	if err != nil {
		return nil, TypeSpec{}, err
	}
	return names, spec, nil
}

func parseSizeConstraint(value string) (SizeConstraint, error) {
	tokens := strings.Fields(value)
	if len(tokens) == 1 {
		tokens = []string{"=", tokens[0]}
	}
	if len(tokens) != 2 {
		return SizeConstraint{}, fmt.Errorf("malformed %%size %q", value)
	}
	ops := map[string]SizeOp{"==": SizeEQ, "=": SizeEQ, "<": SizeLT, "<=": SizeLE, ">": SizeGT, ">=": SizeGE}
	op, ok := ops[tokens[0]]
	if !ok {
		return SizeConstraint{}, fmt.Errorf("unknown %%size operator %q", tokens[0])
	}
	n, err := strconv.Atoi(tokens[1])
	if err != nil {
		return SizeConstraint{}, fmt.Errorf("invalid %%size bound %q", tokens[1])
	}
	return SizeConstraint{Op: op, N: n}, nil
}

// Validate checks a single record against the descriptor's enforced
// constraints: %mandatory, %prohibit, %allowed, the core type kinds
// (int, real, bool, range, regexp, enum, line), and each %constraint
// expression. It does not check %unique, %key or %size, which require
// the whole RecordSet and which ValidateSet handles. ce may be nil, in
// which case %constraint fields are silently skipped.
func (d *Descriptor) Validate(r *Record, ce ConstraintEvaluator) []Violation {
	var violations []Violation

	for name := range d.Mandatory {
		if !r.HasField(name) {
			violations = append(violations, Violation{Kind: MissingMandatory, Field: name})
		}
	}
	for _, f := range r.Fields {
		if d.Prohibit[f.Name] {
			violations = append(violations, Violation{Kind: ProhibitedField, Field: f.Name})
		}
		if len(d.Allowed) > 0 && !d.Allowed[f.Name] && !strings.HasPrefix(f.Name, "%") {
			violations = append(violations, Violation{Kind: NotAllowedField, Field: f.Name})
		}
		if spec, ok := d.Types[f.Name]; ok {
			if ok, expected := spec.checkKind(f.Value); !ok {
				violations = append(violations, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: expected})
			}
		}
	}
	for _, expr := range d.Constraint {
		if ce == nil {
			continue
		}
		truthy, err := ce.EvalConstraint(expr, r, d)
		if err == nil && !truthy {
			violations = append(violations, Violation{Kind: ConstraintViolated, Expected: expr})
		}
	}
	return violations
}

// ValidateSet checks the whole-set constraints: %key uniqueness, %unique
// fields, and %size. records is the set of records sharing this descriptor's
// type (already filtered by the caller).
func (d *Descriptor) ValidateSet(records []*Record, ce ConstraintEvaluator) []Violation {
	var violations []Violation

	if d.Size != nil && !d.Size.satisfied(len(records)) {
		violations = append(violations, Violation{Kind: SizeViolation, Expected: d.Size.String()})
	}

	seenKey := map[string]bool{}
	seenUnique := map[string]map[string]bool{}
	for name := range d.Unique {
		seenUnique[name] = map[string]bool{}
	}

	for _, r := range records {
		if d.Key != "" {
			if v, ok := r.GetField(d.Key); ok {
				if seenKey[v] {
					violations = append(violations, Violation{Kind: DuplicateKey, Field: d.Key, Value: v})
				}
				seenKey[v] = true
			}
		}
		for name := range d.Unique {
			if v, ok := r.GetField(name); ok {
				if seenUnique[name][v] {
					violations = append(violations, Violation{Kind: UniquenessViolation, Field: name, Value: v})
				}
				seenUnique[name][v] = true
			}
		}
	}
	return violations
}

// ValidateStrict layers the types spec.md §4.3 leaves unenforced by
// default — date, email, uuid, field, and size (value length at most N
// characters) — on top of Validate. It is an additive, opt-in operation:
// the default Validate's behavior (these kinds pass as plain strings) is
// unchanged.
func (d *Descriptor) ValidateStrict(r *Record, ce ConstraintEvaluator) []Violation {
	violations := d.Validate(r, ce)
	for _, f := range r.Fields {
		spec, ok := d.Types[f.Name]
		if !ok {
			continue
		}
		switch spec.Kind {
		case TypeDate:
			if _, err := dateparse.ParseAny(f.Value); err != nil {
				violations = append(violations, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: "date"})
			}
		case TypeEmail:
			if !emailRx.MatchString(f.Value) {
				violations = append(violations, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: "email address"})
			}
		case TypeUUID:
			if _, err := uuid.Parse(f.Value); err != nil {
				violations = append(violations, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: "uuid"})
			}
		case TypeField:
			if !fieldNameRx.MatchString(f.Value) {
				violations = append(violations, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: "field name"})
			}
		case TypeSize:
			if len(f.Value) > spec.SizeMax {
				violations = append(violations, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: fmt.Sprintf("at most %d characters", spec.SizeMax)})
			}
		}
	}
	return violations
}
