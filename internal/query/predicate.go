package query

import (
	"fmt"
	"strings"
)

// Predicate is a composable boolean expression over resource columns.
// Predicates render to parameterized SQL so clause grouping is explicit
// in the tree rather than implied by string concatenation order.
type Predicate interface {
	render(b *builder)
}

type builder struct {
	sql  strings.Builder
	args []interface{}
}

func (b *builder) placeholder(value interface{}) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// Render flattens the predicate tree into a WHERE fragment and its
// ordered arguments. Placeholders start at $1.
func Render(p Predicate) (string, []interface{}) {
	b := &builder{}
	p.render(b)
	return b.sql.String(), b.args
}

// Eq matches a column exactly.
type Eq struct {
	Column string
	Value  interface{}
}

func (p Eq) render(b *builder) {
	fmt.Fprintf(&b.sql, "%s = %s", p.Column, b.placeholder(p.Value))
}

// EqFold matches a text column case-insensitively, ignoring surrounding
// whitespace on both sides of the comparison.
type EqFold struct {
	Column string
	Value  string
}

func (p EqFold) render(b *builder) {
	normalized := strings.ToLower(strings.TrimSpace(p.Value))
	fmt.Fprintf(&b.sql, "LOWER(TRIM(%s)) = %s", p.Column, b.placeholder(normalized))
}

// Contains matches a text column by case-insensitive substring.
type Contains struct {
	Column string
	Value  string
}

func (p Contains) render(b *builder) {
	fmt.Fprintf(&b.sql, "%s ILIKE %s", p.Column, b.placeholder("%"+p.Value+"%"))
}

// TagsContain matches when any element of a text[] column contains the
// value as a case-insensitive substring.
type TagsContain struct {
	Column string
	Value  string
}

func (p TagsContain) render(b *builder) {
	fmt.Fprintf(&b.sql, "array_to_string(%s, ' ') ILIKE %s", p.Column, b.placeholder("%"+p.Value+"%"))
}

type conjunction struct {
	op    string
	parts []Predicate
}

func (p conjunction) render(b *builder) {
	if len(p.parts) == 0 {
		b.sql.WriteString("TRUE")
		return
	}
	if len(p.parts) == 1 {
		p.parts[0].render(b)
		return
	}
	b.sql.WriteString("(")
	for i, part := range p.parts {
		if i > 0 {
			b.sql.WriteString(" " + p.op + " ")
		}
		part.render(b)
	}
	b.sql.WriteString(")")
}

// And combines predicates so every one must hold. And() renders TRUE.
func And(parts ...Predicate) Predicate {
	return conjunction{op: "AND", parts: parts}
}

// Or combines predicates so at least one must hold.
func Or(parts ...Predicate) Predicate {
	return conjunction{op: "OR", parts: parts}
}
