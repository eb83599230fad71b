package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Constraint is one (property, expected value) test in a Query.
type Constraint struct {
	property string
	index    int
	label    string
	match    func(p *Population, person PersonID) bool
}

// Match constrains prop to equal value.
func Match[T comparable](prop *Property[T], value T) Constraint {
	return Constraint{
		property: prop.Name(),
		index:    prop.Index(),
		label:    fmt.Sprintf("%v", value),
		match: func(p *Population, person PersonID) bool {
			return GetProperty(p, person, prop) == value
		},
	}
}

// MatchFunc constrains prop with a predicate. label identifies the predicate
// in Query.Key and must differ between predicates that select differently.
func MatchFunc[T any](prop *Property[T], label string, pred func(T) bool) Constraint {
	return Constraint{
		property: prop.Name(),
		index:    prop.Index(),
		label:    label,
		match: func(p *Population, person PersonID) bool {
			return pred(GetProperty(p, person, prop))
		},
	}
}

// Query is a conjunction of constraints, evaluated in order with
// short-circuit on the first mismatch. The empty Query matches everyone.
type Query struct {
	constraints []Constraint
}

// NewQuery builds a Query from constraints.
func NewQuery(constraints ...Constraint) Query {
	return Query{constraints: append([]Constraint(nil), constraints...)}
}

// Matches reports whether person satisfies every constraint.
func (q Query) Matches(p *Population, person PersonID) bool {
	for _, c := range q.constraints {
		if !c.match(p, person) {
			return false
		}
	}
	return true
}

// Len returns the number of constraints.
func (q Query) Len() int { return len(q.constraints) }

// Canonical returns the same query with constraints ordered by property slot.
func (q Query) Canonical() Query {
	cs := append([]Constraint(nil), q.constraints...)
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].index != cs[j].index {
			return cs[i].index < cs[j].index
		}
		return cs[i].label < cs[j].label
	})
	return Query{constraints: cs}
}

// Key identifies the query independently of constraint order.
func (q Query) Key() string {
	parts := make([]string, len(q.constraints))
	for i, c := range q.Canonical().constraints {
		parts[i] = c.property + "=" + c.label
	}
	return strings.Join(parts, "&")
}
