package sex

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hkhanna/recutils/rec"
)

// Evaluator evaluates a compiled Expr against a Record (spec §4.6). It
// carries no mutable state beyond its configuration, so the same
// Evaluator is safe to reuse across goroutines and records.
type Evaluator struct {
	// CaseInsensitive, when true, case-folds string equality comparisons
	// (spec §4.6, exercised by the query driver's case_insensitive flag).
	CaseInsensitive bool
}

var foldCaser = cases.Fold()

// Eval evaluates expr against r, using d (if non-nil) to decide whether
// a field reference should be coerced to a numeric Value.
func (e *Evaluator) Eval(expr *Expr, r *rec.Record, d *rec.Descriptor) Value {
	return e.evalNode(expr.Root, r, d)
}

func (e *Evaluator) evalNode(n Node, r *rec.Record, d *rec.Descriptor) Value {
	switch node := n.(type) {
	case IntNode:
		return IntValue(node.Value)
	case RealNode:
		return RealValue(node.Value)
	case StringNode:
		return StringValue(node.Value)
	case CountNode:
		return IntValue(int64(r.FieldCount(node.Name)))
	case FieldRefNode:
		return e.evalFieldRef(node, r, d)
	case UnaryNode:
		return e.evalUnary(node, r, d)
	case BinaryNode:
		return e.evalBinary(node, r, d)
	case TernaryNode:
		return e.evalTernary(node, r, d)
	case ImpliesNode:
		return e.evalImplies(node, r, d)
	default:
		return ErrorValue(TypeMismatch)
	}
}

func (e *Evaluator) evalFieldRef(n FieldRefNode, r *rec.Record, d *rec.Descriptor) Value {
	var raw string
	var ok bool
	if n.HasIndex {
		raw, ok = r.FieldAt(n.Name, n.Index)
	} else {
		raw, ok = r.GetField(n.Name)
	}
	if !ok {
		return ErrorValue(MissingField)
	}
	if d != nil {
		if spec, has := d.Types[n.Name]; has {
			switch spec.Kind {
			case rec.TypeInt, rec.TypeRange:
				i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
				if err != nil {
					return ErrorValue(TypeMismatch)
				}
				return IntValue(i)
			case rec.TypeReal:
				f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
				if err != nil {
					return ErrorValue(TypeMismatch)
				}
				return RealValue(f)
			}
		}
	}
	return StringValue(raw)
}

func (e *Evaluator) evalUnary(n UnaryNode, r *rec.Record, d *rec.Descriptor) Value {
	switch n.Op {
	case OpNot:
		v := e.evalNode(n.X, r, d)
		b, prop := v.truthy()
		if prop != nil {
			return *prop
		}
		return BoolValue(!b)
	case OpNeg:
		v := e.evalNode(n.X, r, d)
		if v.IsError() {
			return v
		}
		i, f, isReal, ok := v.coerceNumeric()
		if !ok {
			return ErrorValue(TypeMismatch)
		}
		if isReal {
			return RealValue(-f)
		}
		return IntValue(-i)
	default:
		return ErrorValue(TypeMismatch)
	}
}

func (e *Evaluator) evalBinary(n BinaryNode, r *rec.Record, d *rec.Descriptor) Value {
	switch n.Op {
	case OpAnd, OpOr:
		return e.evalLogical(n, r, d)
	}

	left := e.evalNode(n.Left, r, d)
	if left.IsError() {
		return left
	}
	right := e.evalNode(n.Right, r, d)
	if right.IsError() {
		return right
	}

	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return e.evalArith(n.Op, left, right)
	case OpConcat:
		return StringValue(left.String() + right.String())
	case OpEq, OpNe:
		return e.evalEquality(n.Op, left, right)
	case OpLt, OpLe, OpGt, OpGe:
		return e.evalOrdering(n.Op, left, right)
	case OpMatch, OpNotMatch:
		return e.evalMatch(n.Op, left, right)
	default:
		return ErrorValue(TypeMismatch)
	}
}

func (e *Evaluator) evalArith(op BinOp, left, right Value) Value {
	li, lf, lReal, lok := left.coerceNumeric()
	ri, rf, rReal, rok := right.coerceNumeric()
	if !lok || !rok {
		return ErrorValue(TypeMismatch)
	}
	useReal := lReal || rReal
	if useReal {
		if !lReal {
			lf = float64(li)
		}
		if !rReal {
			rf = float64(ri)
		}
		switch op {
		case OpAdd:
			return RealValue(lf + rf)
		case OpSub:
			return RealValue(lf - rf)
		case OpMul:
			return RealValue(lf * rf)
		case OpDiv:
			if rf == 0 {
				return ErrorValue(DivideByZero)
			}
			return RealValue(lf / rf)
		case OpMod:
			if rf == 0 {
				return ErrorValue(DivideByZero)
			}
			return RealValue(float64(int64(lf) % int64(rf)))
		}
	}
	switch op {
	case OpAdd:
		return IntValue(li + ri)
	case OpSub:
		return IntValue(li - ri)
	case OpMul:
		return IntValue(li * ri)
	case OpDiv:
		if ri == 0 {
			return ErrorValue(DivideByZero)
		}
		return IntValue(li / ri)
	case OpMod:
		if ri == 0 {
			return ErrorValue(DivideByZero)
		}
		return IntValue(li % ri)
	}
	return ErrorValue(TypeMismatch)
}

func (e *Evaluator) evalEquality(op BinOp, left, right Value) Value {
	li, lf, lReal, lok := left.coerceNumeric()
	ri, rf, rReal, rok := right.coerceNumeric()
	var eq bool
	if lok && rok {
		if lReal || rReal {
			if !lReal {
				lf = float64(li)
			}
			if !rReal {
				rf = float64(ri)
			}
			eq = lf == rf
		} else {
			eq = li == ri
		}
	} else {
		a, b := left.String(), right.String()
		if e.CaseInsensitive {
			a, b = foldCaser.String(a), foldCaser.String(b)
		}
		eq = a == b
	}
	if op == OpNe {
		eq = !eq
	}
	return BoolValue(eq)
}

func (e *Evaluator) evalOrdering(op BinOp, left, right Value) Value {
	li, lf, lReal, lok := left.coerceNumeric()
	ri, rf, rReal, rok := right.coerceNumeric()
	var cmp int
	if lok && rok {
		if lReal || rReal {
			if !lReal {
				lf = float64(li)
			}
			if !rReal {
				rf = float64(ri)
			}
			cmp = cmpFloat(lf, rf)
		} else {
			cmp = cmpInt(li, ri)
		}
	} else {
		cmp = strings.Compare(left.String(), right.String())
	}
	switch op {
	case OpLt:
		return BoolValue(cmp < 0)
	case OpLe:
		return BoolValue(cmp <= 0)
	case OpGt:
		return BoolValue(cmp > 0)
	case OpGe:
		return BoolValue(cmp >= 0)
	}
	return ErrorValue(TypeMismatch)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Evaluator) evalMatch(op BinOp, left, right Value) Value {
	pattern := right.String()
	if e.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := compileRegex(pattern)
	if err != nil {
		return ErrorValue(BadRegex)
	}
	matched := re.MatchString(left.String())
	if op == OpNotMatch {
		matched = !matched
	}
	return BoolValue(matched)
}

func (e *Evaluator) evalLogical(n BinaryNode, r *rec.Record, d *rec.Descriptor) Value {
	left := e.evalNode(n.Left, r, d)
	lb, lprop := left.truthy()
	if lprop != nil {
		return *lprop
	}
	if n.Op == OpAnd && !lb {
		return BoolValue(false)
	}
	if n.Op == OpOr && lb {
		return BoolValue(true)
	}
	right := e.evalNode(n.Right, r, d)
	rb, rprop := right.truthy()
	if rprop != nil {
		return *rprop
	}
	return BoolValue(rb)
}

func (e *Evaluator) evalTernary(n TernaryNode, r *rec.Record, d *rec.Descriptor) Value {
	cond := e.evalNode(n.Cond, r, d)
	b, prop := cond.truthy()
	if prop != nil {
		return *prop
	}
	if b {
		return e.evalNode(n.Then, r, d)
	}
	return e.evalNode(n.Else, r, d)
}

// evalImplies implements `A => B` as `!A || B` without desugaring the
// tree (spec §4.5): the right side is only evaluated when the left side
// is true.
func (e *Evaluator) evalImplies(n ImpliesNode, r *rec.Record, d *rec.Descriptor) Value {
	left := e.evalNode(n.Left, r, d)
	lb, lprop := left.truthy()
	if lprop != nil {
		return *lprop
	}
	if !lb {
		return BoolValue(true)
	}
	right := e.evalNode(n.Right, r, d)
	rb, rprop := right.truthy()
	if rprop != nil {
		return *rprop
	}
	return BoolValue(rb)
}

// Truthy applies the top-level filter coercion of spec §4.6 and reports
// whether v should be treated as an in-band evaluation error requiring
// diagnostic reporting (any Error other than MissingField).
func Truthy(v Value) (pass bool, diagnostic error) {
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
		return false, &EvalError{Kind: v.ErrKind}
	default:
		return false, nil
	}
}

// EvalError wraps a non-MissingField evaluation Error as a Go error for
// the query driver's diagnostic channel (spec §7: "Evaluation errors at
// the top level of a filter ... are collected in a diagnostic channel").
type EvalError struct {
	Kind ErrorKind
}

func (e *EvalError) Error() string { return "sex evaluation error: " + e.Kind.String() }
