package store

import (
	"strconv"
	"strings"
	"time"
)

type clauseKind int

const (
	clauseEq clauseKind = iota
	clauseIn
	clausePrefix
	clauseSince
	clauseBefore
	clauseContains
	clauseFalse
)

// Clause is one typed condition of a Predicate.
type Clause struct {
	kind   clauseKind
	column string
	values []any
}

// Eq matches column = v.
func Eq(column string, v any) Clause {
	return Clause{kind: clauseEq, column: column, values: []any{v}}
}

// In matches column against a set of values. An empty set matches nothing
// and renders as FALSE, never as an empty IN list.
func In(column string, vs []string) Clause {
	values := make([]any, len(vs))
	for i, v := range vs {
		values[i] = v
	}

	return Clause{kind: clauseIn, column: column, values: values}
}

// Prefix matches rows whose column starts with prefix. LIKE wildcards in
// prefix are matched literally.
func Prefix(column, prefix string) Clause {
	return Clause{kind: clausePrefix, column: column, values: []any{escapeLike(prefix) + "%"}}
}

// Since matches column >= t.
func Since(column string, t time.Time) Clause {
	return Clause{kind: clauseSince, column: column, values: []any{t}}
}

// Before matches column < t.
func Before(column string, t time.Time) Clause {
	return Clause{kind: clauseBefore, column: column, values: []any{t}}
}

// Contains matches a case-insensitive substring of column.
func Contains(column, s string) Clause {
	return Clause{kind: clauseContains, column: column, values: []any{"%" + escapeLike(s) + "%"}}
}

// False matches nothing.
func False() Clause {
	return Clause{kind: clauseFalse}
}

// Predicate is an ordered conjunction of clauses.
type Predicate struct {
	clauses []Clause
}

// And appends clauses to the conjunction.
func (p *Predicate) And(cs ...Clause) *Predicate {
	p.clauses = append(p.clauses, cs...)
	return p
}

// Len returns the number of clauses.
func (p *Predicate) Len() int {
	return len(p.clauses)
}

// Render returns a WHERE clause using $n placeholders numbered from 1, the
// matching argument slice and the next free placeholder index. An empty
// predicate renders as an empty string.
func (p *Predicate) Render() (where string, args []any, nextArg int) {
	nextArg = 1
	if len(p.clauses) == 0 {
		return "", nil, nextArg
	}

	conditions := make([]string, 0, len(p.clauses))
	placeholder := func(v any) string {
		args = append(args, v)
		s := "$" + strconv.Itoa(nextArg)
		nextArg++

		return s
	}

	for _, c := range p.clauses {
		switch c.kind {
		case clauseEq:
			conditions = append(conditions, c.column+" = "+placeholder(c.values[0]))
		case clauseIn:
			if len(c.values) == 0 {
				conditions = append(conditions, "FALSE")
				continue
			}

			ph := make([]string, len(c.values))
			for i, v := range c.values {
				ph[i] = placeholder(v)
			}

			conditions = append(conditions, c.column+" IN ("+strings.Join(ph, ", ")+")")
		case clausePrefix:
			conditions = append(conditions, c.column+" LIKE "+placeholder(c.values[0]))
		case clauseSince:
			conditions = append(conditions, c.column+" >= "+placeholder(c.values[0]))
		case clauseBefore:
			conditions = append(conditions, c.column+" < "+placeholder(c.values[0]))
		case clauseContains:
			conditions = append(conditions, c.column+" ILIKE "+placeholder(c.values[0]))
		case clauseFalse:
			conditions = append(conditions, "FALSE")
		}
	}

	return "WHERE " + strings.Join(conditions, " AND "), args, nextArg
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters using the default backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
