package sex

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/hkhanna/recutils/rec"
)

func TestSex(t *testing.T) { TestingT(t) }

type LexerSuite struct{}

var _ = Suite(&LexerSuite{})

func (s *LexerSuite) TestOperators(c *C) {
	lx := NewLexer("= != < <= > >= ~ !~ && || ! => ? : + - * / % & # [ ] ( )")
	var kinds []TokenKind
	for {
		tok, err := lx.Next()
		c.Assert(err, IsNil)
		if tok.Kind == EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	c.Check(kinds, DeepEquals, []TokenKind{
		Eq, Ne, Lt, Le, Gt, Ge, Tilde, NotTilde, AndAnd, OrOr, Bang, Arrow,
		Question, Colon, Plus, Minus, Star, Slash, Percent, Amp, Hash,
		LBracket, RBracket, LParen, RParen,
	})
}

func (s *LexerSuite) TestHexInteger(c *C) {
	lx := NewLexer("0x1F")
	tok, err := lx.Next()
	c.Assert(err, IsNil)
	c.Check(tok.Kind, Equals, IntLit)
	c.Check(tok.IntVal, Equals, int64(31))
}

func (s *LexerSuite) TestOctalInteger(c *C) {
	lx := NewLexer("017")
	tok, err := lx.Next()
	c.Assert(err, IsNil)
	c.Check(tok.Kind, Equals, IntLit)
	c.Check(tok.IntVal, Equals, int64(15))
}

func (s *LexerSuite) TestSingleQuotedStringEscapes(c *C) {
	lx := NewLexer(`'it\'s \\here'`)
	tok, err := lx.Next()
	c.Assert(err, IsNil)
	c.Check(tok.Kind, Equals, StringLit)
	c.Check(tok.Text, Equals, `it's \here`)
}

func (s *LexerSuite) TestDoubleQuotedString(c *C) {
	lx := NewLexer(`"hello world"`)
	tok, err := lx.Next()
	c.Assert(err, IsNil)
	c.Check(tok.Kind, Equals, StringLit)
	c.Check(tok.Text, Equals, "hello world")
}

func (s *LexerSuite) TestUnterminatedString(c *C) {
	lx := NewLexer(`'oops`)
	_, err := lx.Next()
	c.Assert(err, FitsTypeOf, &SexError{})
	c.Check(err.(*SexError).Kind, Equals, UnterminatedString)
}

type ParserSuite struct{}

var _ = Suite(&ParserSuite{})

func (s *ParserSuite) TestPrecedence(c *C) {
	expr, err := Compile("1 + 2 * 3")
	c.Assert(err, IsNil)
	bin, ok := expr.Root.(BinaryNode)
	c.Assert(ok, Equals, true)
	c.Check(bin.Op, Equals, OpAdd)
	_, ok = bin.Right.(BinaryNode)
	c.Check(ok, Equals, true)
}

func (s *ParserSuite) TestTernary(c *C) {
	expr, err := Compile("1 ? 2 : 3")
	c.Assert(err, IsNil)
	_, ok := expr.Root.(TernaryNode)
	c.Check(ok, Equals, true)
}

func (s *ParserSuite) TestImpliesRightAssociative(c *C) {
	expr, err := Compile("a => b => c")
	c.Assert(err, IsNil)
	top, ok := expr.Root.(ImpliesNode)
	c.Assert(ok, Equals, true)
	_, leftIsField := top.Left.(FieldRefNode)
	c.Check(leftIsField, Equals, true)
	_, rightIsImplies := top.Right.(ImpliesNode)
	c.Check(rightIsImplies, Equals, true)
}

func (s *ParserSuite) TestFieldRefWithIndex(c *C) {
	expr, err := Compile("Tag[1]")
	c.Assert(err, IsNil)
	f, ok := expr.Root.(FieldRefNode)
	c.Assert(ok, Equals, true)
	c.Check(f.Name, Equals, "Tag")
	c.Check(f.HasIndex, Equals, true)
	c.Check(f.Index, Equals, 1)
}

func (s *ParserSuite) TestUnexpectedTokenError(c *C) {
	_, err := Compile("1 +")
	c.Assert(err, FitsTypeOf, &SexError{})
}

type EvalSuite struct{}

var _ = Suite(&EvalSuite{})

func recordWith(fields ...rec.Field) *rec.Record {
	return &rec.Record{Fields: fields}
}

func (s *EvalSuite) eval(c *C, src string, r *rec.Record, d *rec.Descriptor, caseInsensitive bool) Value {
	expr, err := Compile(src)
	c.Assert(err, IsNil)
	ev := &Evaluator{CaseInsensitive: caseInsensitive}
	return ev.Eval(expr, r, d)
}

func (s *EvalSuite) TestAgeAndStatus(c *C) {
	r := recordWith(rec.Field{Name: "Age", Value: "25"}, rec.Field{Name: "Status", Value: "active"})
	v := s.eval(c, "Age > 18 && Status = 'active'", r, nil, false)
	c.Check(v, Equals, BoolValue(true))
}

func (s *EvalSuite) TestCaseInsensitiveEquality(c *C) {
	r := recordWith(rec.Field{Name: "Age", Value: "25"}, rec.Field{Name: "Status", Value: "ACTIVE"})
	c.Check(s.eval(c, "Age > 18 && Status = 'active'", r, nil, true), Equals, BoolValue(true))
	c.Check(s.eval(c, "Age > 18 && Status = 'active'", r, nil, false), Equals, BoolValue(false))
}

func (s *EvalSuite) TestMissingFieldComparison(c *C) {
	r := recordWith(rec.Field{Name: "Other", Value: "x"})
	v := s.eval(c, "Age < 18", r, nil, false)
	c.Check(v.IsError(), Equals, true)
	c.Check(v.ErrKind, Equals, MissingField)
	pass, diag := Truthy(v)
	c.Check(pass, Equals, false)
	c.Check(diag, IsNil)
}

func (s *EvalSuite) TestDivideByZero(c *C) {
	r := recordWith()
	v := s.eval(c, "1 / 0", r, nil, false)
	c.Check(v.IsError(), Equals, true)
	c.Check(v.ErrKind, Equals, DivideByZero)
}

func (s *EvalSuite) TestCount(c *C) {
	r := recordWith(rec.Field{Name: "Tag", Value: "a"}, rec.Field{Name: "Tag", Value: "b"})
	v := s.eval(c, "#Tag", r, nil, false)
	c.Check(v, Equals, IntValue(2))
}

func (s *EvalSuite) TestNotOfFalseIsTrue(c *C) {
	r := recordWith(rec.Field{Name: "Age", Value: "5"})
	a := s.eval(c, "Age > 18", r, nil, false)
	b := s.eval(c, "!(Age > 18)", r, nil, false)
	c.Check(a, Equals, BoolValue(false))
	c.Check(b, Equals, BoolValue(true))
}

func (s *EvalSuite) TestRegexMatch(c *C) {
	r := recordWith(rec.Field{Name: "Name", Value: "hello world"})
	v := s.eval(c, "Name ~ 'wor.d'", r, nil, false)
	c.Check(v, Equals, BoolValue(true))
}

func (s *EvalSuite) TestConcat(c *C) {
	r := recordWith(rec.Field{Name: "First", Value: "John"}, rec.Field{Name: "Last", Value: "Doe"})
	v := s.eval(c, "First & ' ' & Last", r, nil, false)
	c.Check(v, Equals, StringValue("John Doe"))
}

func (s *EvalSuite) TestTernaryEvaluatesChosenBranchOnly(c *C) {
	r := recordWith(rec.Field{Name: "Age", Value: "20"})
	v := s.eval(c, "Age > 18 ? 1 : 1/0", r, nil, false)
	c.Check(v, Equals, IntValue(1))
}

func (s *EvalSuite) TestImpliesShortCircuits(c *C) {
	r := recordWith(rec.Field{Name: "Age", Value: "5"})
	v := s.eval(c, "Age > 18 => 1/0 = 1", r, nil, false)
	c.Check(v, Equals, BoolValue(true))
}
