/*
Package recutils reads and queries recfiles: the line-oriented,
human-editable, text-based record database format used by GNU recutils.

A recfile is a sequence of records separated by blank lines. Each record
is an ordered multiset of named fields:

	Name: Alice
	Age: 34

	Name: Bob
	Age: 29

Some records are descriptors: a record whose first field is %rec
declares the type, mandatory fields, and field types of the records that
follow it until the next descriptor. Declaring the same type twice is a
parse error.

	%rec: Person
	%mandatory: Name
	%type: Age int

	Name: Alice
	Age: 34

# Parsing

Parse and ParseStream turn recfile text into a *rec.RecordSet:

	rs, err := recutils.Parse(text)

# Selection expressions

SEX, the selection-expression language, filters and computes over
records: arithmetic, string concatenation, regex matching, field
subscripts and counts, short-circuit logic, an implies operator, and a
ternary. Compile parses an expression once; Evaluate runs it against a
record:

	expr, err := recutils.Compile("Age > 18 && Status = 'active'")
	v := recutils.Evaluate(expr, record, descriptor, false)

# Querying

Query assembles type, index, quick-search, and SEX filters, plus random
sampling, sorting, grouping, uniquing, and projection, over a RecordSet:

	result, err := recutils.Query(rs, recutils.QuerySpec{
		RecordType: "Person",
		Expression: "Age > 18",
	})
	fmt.Print(recutils.FormatDefault(result))
*/
package recutils
