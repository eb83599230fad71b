package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/transmission-sim/transmission-sim/sim/kindindex"
)

// PersonID identifies a person. IDs are dense, starting at 0, in the order
// people were added.
type PersonID int

// propertyKinds numbers every person property in the process.
var propertyKinds = kindindex.NewCategory("person-property")

// Property declares a typed per-person attribute with a default value.
// Properties are normally package-level variables; the storage slot is
// claimed on first use.
type Property[T any] struct {
	handle  *kindindex.Handle
	initial T
}

// NewProperty declares a property whose unset value is initial. The slot is
// keyed by name, so names must be unique across property types.
func NewProperty[T any](name string, initial T) *Property[T] {
	return &Property[T]{handle: kindindex.NewHandle(propertyKinds, name), initial: initial}
}

// Name returns the property name.
func (p *Property[T]) Name() string { return p.handle.Name() }

// Index returns the property's storage slot.
func (p *Property[T]) Index() int { return p.handle.Index() }

// Initial returns the value every person holds until the property is set.
func (p *Property[T]) Initial() T { return p.initial }

// PropertyChangeEvent is delivered to subscribers after a property is set.
type PropertyChangeEvent[T any] struct {
	Person   PersonID
	Previous T
	Current  T
}

// column stores one property's values; people beyond len(values) hold the
// property's initial value.
type column[T any] struct {
	values []T
}

// Population is the entity/property store: the set of people and their
// typed attributes, with synchronous change notifications.
//
// Thread-safety: NOT thread-safe. Mutated only from simulation callbacks.
type Population struct {
	size int
	// columns[property index] is a *column[T]; nil until first set.
	columns []any
	// listeners[property index] holds func(PropertyChangeEvent[T]) values.
	listeners [][]any
}

// NewPopulation creates an empty Population.
func NewPopulation() *Population {
	return &Population{}
}

// AddPerson adds a person with every property at its initial value.
func (p *Population) AddPerson() PersonID {
	id := PersonID(p.size)
	p.size++
	return id
}

// Size returns the number of people.
func (p *Population) Size() int { return p.size }

// Contains reports whether person has been added.
func (p *Population) Contains(person PersonID) bool {
	return person >= 0 && int(person) < p.size
}

// GetProperty returns person's value for prop.
func GetProperty[T any](p *Population, person PersonID, prop *Property[T]) T {
	p.mustContain(person)
	i := prop.Index()
	if i >= len(p.columns) || p.columns[i] == nil {
		return prop.initial
	}
	col := p.columns[i].(*column[T])
	if int(person) >= len(col.values) {
		return prop.initial
	}
	return col.values[person]
}

// SetProperty stores value for person and notifies prop's subscribers, in
// subscription order, before returning.
func SetProperty[T any](p *Population, person PersonID, prop *Property[T], value T) {
	previous := GetProperty(p, person, prop)

	i := prop.Index()
	if i >= len(p.columns) {
		p.columns = append(p.columns, make([]any, i+1-len(p.columns))...)
	}
	if p.columns[i] == nil {
		p.columns[i] = &column[T]{}
	}
	col := p.columns[i].(*column[T])
	for len(col.values) <= int(person) {
		col.values = append(col.values, prop.initial)
	}
	col.values[person] = value

	if i < len(p.listeners) {
		ev := PropertyChangeEvent[T]{Person: person, Previous: previous, Current: value}
		for _, l := range p.listeners[i] {
			l.(func(PropertyChangeEvent[T]))(ev)
		}
	}
}

// SubscribeToProperty registers fn to run after every SetProperty on prop.
func SubscribeToProperty[T any](p *Population, prop *Property[T], fn func(PropertyChangeEvent[T])) {
	i := prop.Index()
	if i >= len(p.listeners) {
		p.listeners = append(p.listeners, make([][]any, i+1-len(p.listeners))...)
	}
	p.listeners[i] = append(p.listeners[i], fn)
}

// Count returns how many people match q.
func (p *Population) Count(q Query) int {
	n := 0
	for id := PersonID(0); int(id) < p.size; id++ {
		if q.Matches(p, id) {
			n++
		}
	}
	return n
}

// Sample returns a uniformly chosen person matching q, or false if nobody does.
func (p *Population) Sample(rng *rand.Rand, q Query) (PersonID, bool) {
	var matches []PersonID
	for id := PersonID(0); int(id) < p.size; id++ {
		if q.Matches(p, id) {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 {
		return 0, false
	}
	return matches[rng.IntN(len(matches))], true
}

// SampleOther returns a uniformly chosen person other than exclude, or false
// if exclude is the only person.
func (p *Population) SampleOther(rng *rand.Rand, exclude PersonID) (PersonID, bool) {
	if p.size < 2 {
		return 0, false
	}
	id := PersonID(rng.IntN(p.size - 1))
	if id >= exclude {
		id++
	}
	return id, true
}

func (p *Population) mustContain(person PersonID) {
	if !p.Contains(person) {
		panic(fmt.Sprintf("sim: person %d not in population of %d", person, p.size))
	}
}
