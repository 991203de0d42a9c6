package recsel

import (
	"strings"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/hkhanna/recutils/rec"
)

func TestRecsel(t *testing.T) { TestingT(t) }

const bookFile = `%rec: Book
%mandatory: Title

Title: Dune
Location: home

Title: Foundation
Location: loaned

Title: Neuromancer
Location: home
`

type DriverSuite struct {
	rs *rec.RecordSet
}

var _ = Suite(&DriverSuite{})

func (s *DriverSuite) SetUpTest(c *C) {
	rs, err := rec.Parse(strings.NewReader(bookFile))
	c.Assert(err, IsNil)
	s.rs = rs
}

func (s *DriverSuite) TestCountWithExpression(c *C) {
	d := NewDriver(s.rs)
	result, err := d.Query(QuerySpec{RecordType: "Book", Expression: "Location = 'home'", Count: true})
	c.Assert(err, IsNil)
	c.Check(result.HasCount, Equals, true)
	c.Check(result.Count, Equals, 2)
}

func (s *DriverSuite) TestIndexFilterPreservesOrder(c *C) {
	d := NewDriver(s.rs)
	result, err := d.Query(QuerySpec{RecordType: "Book", Indexes: "0,2"})
	c.Assert(err, IsNil)
	c.Assert(result.Records, HasLen, 2)
	v0, _ := result.Records[0].GetField("Title")
	v1, _ := result.Records[1].GetField("Title")
	c.Check(v0, Equals, "Dune")
	c.Check(v1, Equals, "Neuromancer")
}

func (s *DriverSuite) TestQuickSearchCaseInsensitive(c *C) {
	d := NewDriver(s.rs)
	result, err := d.Query(QuerySpec{Quick: "DUNE", CaseInsensitive: true})
	c.Assert(err, IsNil)
	c.Assert(result.Records, HasLen, 1)
	v, _ := result.Records[0].GetField("Title")
	c.Check(v, Equals, "Dune")
}

func (s *DriverSuite) TestRandomSamplingAllWhenCountExceeds(c *C) {
	d := NewDriver(s.rs)
	result, err := d.Query(QuerySpec{RecordType: "Book", RandomCount: 100})
	c.Assert(err, IsNil)
	c.Assert(result.Records, HasLen, 3)
	v0, _ := result.Records[0].GetField("Title")
	c.Check(v0, Equals, "Dune")
}

func (s *DriverSuite) TestSortStableByField(c *C) {
	d := NewDriver(s.rs)
	result, err := d.Query(QuerySpec{RecordType: "Book", Sort: []string{"Location"}})
	c.Assert(err, IsNil)
	c.Assert(result.Records, HasLen, 3)
	locs := make([]string, 3)
	for i, r := range result.Records {
		locs[i], _ = r.GetField("Location")
	}
	c.Check(locs, DeepEquals, []string{"home", "home", "loaned"})
}

func (s *DriverSuite) TestPrintRowProjection(c *C) {
	d := NewDriver(s.rs)
	result, err := d.Query(QuerySpec{RecordType: "Book", Indexes: "0"})
	c.Assert(err, IsNil)
	out := Format(result, QuerySpec{PrintRow: []string{"Title", "Location"}})
	c.Check(out, Equals, "Dune home")
}

func (s *DriverSuite) TestGroupByContiguous(c *C) {
	input := "Type: A\nName: x\n\nType: A\nName: y\n\nType: B\nName: z\n"
	rs, err := rec.Parse(strings.NewReader(input))
	c.Assert(err, IsNil)
	d := NewDriver(rs)
	result, err := d.Query(QuerySpec{GroupBy: []string{"Type"}})
	c.Assert(err, IsNil)
	c.Assert(result.Groups, HasLen, 2)
	c.Check(result.Groups[0], HasLen, 2)
	c.Check(result.Groups[1], HasLen, 1)
}

func (s *DriverSuite) TestUniqAdjacent(c *C) {
	input := "Type: A\n\nType: A\n\nType: B\n\nType: A\n"
	rs, err := rec.Parse(strings.NewReader(input))
	c.Assert(err, IsNil)
	d := NewDriver(rs)
	result, err := d.Query(QuerySpec{Uniq: []string{"Type"}})
	c.Assert(err, IsNil)
	c.Check(result.Records, HasLen, 3)
}

func (s *DriverSuite) TestIdempotenceWithoutRandomSampling(c *C) {
	d := NewDriver(s.rs)
	spec := QuerySpec{RecordType: "Book", Sort: []string{"Title"}}
	r1, err := d.Query(spec)
	c.Assert(err, IsNil)
	r2, err := NewDriver(&rec.RecordSet{Records: r1.Records, Descriptors: s.rs.Descriptors}).Query(spec)
	c.Assert(err, IsNil)
	c.Assert(r1.Records, HasLen, len(r2.Records))
	for i := range r1.Records {
		v1, _ := r1.Records[i].GetField("Title")
		v2, _ := r2.Records[i].GetField("Title")
		c.Check(v1, Equals, v2)
	}
}

type IndexSpecSuite struct{}

var _ = Suite(&IndexSpecSuite{})

func (s *IndexSpecSuite) TestCommaAndRange(c *C) {
	set, err := parseIndexSpec("0,2-3,7")
	c.Assert(err, IsNil)
	c.Check(set, DeepEquals, map[int]bool{0: true, 2: true, 3: true, 7: true})
}

func (s *IndexSpecSuite) TestEmpty(c *C) {
	set, err := parseIndexSpec("")
	c.Assert(err, IsNil)
	c.Check(set, HasLen, 0)
}
