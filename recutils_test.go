package recutils

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/hkhanna/recutils/rec"
)

func TestRecutils(t *testing.T) { TestingT(t) }

type FacadeSuite struct{}

var _ = Suite(&FacadeSuite{})

const sampleFile = `%rec: Book
%mandatory: Title
%type: Year int

Title: Dune
Year: 1965
Location: home

Title: Foundation
Year: 1951
Location: loaned
`

func (s *FacadeSuite) TestParseAndQuery(c *C) {
	rs, err := Parse(sampleFile)
	c.Assert(err, IsNil)
	c.Assert(rs.Records, HasLen, 2)

	result, err := Query(rs, QuerySpec{RecordType: "Book", Expression: "Year < 1960", Count: true})
	c.Assert(err, IsNil)
	c.Check(result.HasCount, Equals, true)
	c.Check(result.Count, Equals, 1)
}

func (s *FacadeSuite) TestCompileAndEvaluate(c *C) {
	rs, err := Parse(sampleFile)
	c.Assert(err, IsNil)

	expr, err := Compile("Year < 1960")
	c.Assert(err, IsNil)

	d := rs.Descriptors["Book"]
	v := Evaluate(expr, rs.Records[1], d, false)
	c.Check(v.Bool, Equals, true)
}

func (s *FacadeSuite) TestFormatDefault(c *C) {
	rs, err := Parse(sampleFile)
	c.Assert(err, IsNil)
	result, err := Query(rs, QuerySpec{RecordType: "Book", Indexes: "0"})
	c.Assert(err, IsNil)
	out := FormatDefault(result)
	c.Check(out, Equals, "Title: Dune\nYear: 1965\nLocation: home")
}

func (s *FacadeSuite) TestConstraintEvaluator(c *C) {
	input := "%rec: Person\n%constraint: Age > 0\n\nAge: -1\n"
	rs, err := Parse(input)
	c.Assert(err, IsNil)
	d := rs.Descriptors["Person"]
	ce := NewConstraintEvaluator(false)
	violations := d.Validate(rs.Records[0], ce)
	c.Assert(violations, HasLen, 1)
	c.Check(violations[0].Kind, Equals, rec.ConstraintViolated)
}
