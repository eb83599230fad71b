package ratefn

import (
	"errors"
	"fmt"

	"github.com/transmission-sim/transmission-sim/sim/kindindex"
)

// ErrNotFound is returned by Registry.Lookup for an (entity, kind) pair that
// was never assigned.
var ErrNotFound = errors.New("rate function not found")

// kinds numbers every rate-function kind in the process.
var kinds = kindindex.NewCategory("rate-fn")

// Kind names a category of hazard an entity may be assigned, e.g. "infectiousness".
// An entity holds at most one instance per kind at a time.
type Kind struct {
	handle *kindindex.Handle
}

// NewKind declares a rate-function kind. Kinds are normally package-level
// variables; the index is claimed on first use. Declaring the same name twice
// yields two Kinds that address the same slot.
func NewKind(name string) *Kind {
	return &Kind{handle: kindindex.NewHandle(kinds, name)}
}

// Name returns the kind name.
func (k *Kind) Name() string { return k.handle.Name() }

// Index returns the kind's stable slot index.
func (k *Kind) Index() int { return k.handle.Index() }

// Infectiousness is the intrinsic infectiousness hazard of an infected person.
var Infectiousness = NewKind("infectiousness")

// Registry stores assigned RateFn instances per (entity, kind).
//
// Instances live in a dense append-only list; each kind has its own
// growable per-entity slice of slot numbers, so lookup cost does not depend on
// population size. Re-assigning a kind overwrites the mapping but does not
// reclaim the old slot.
//
// Thread-safety: Lookup and Len only read and may run concurrently with each
// other; Assign must not run concurrently with anything else.
type Registry[E ~int] struct {
	instances []RateFn
	// slots[kind][entity] holds instance index + 1; 0 means unassigned.
	slots [][]int
}

// NewRegistry creates an empty Registry.
func NewRegistry[E ~int]() *Registry[E] {
	return &Registry[E]{}
}

// Assign stores fn for (entity, kind) and returns its slot in the dense store.
func (r *Registry[E]) Assign(entity E, kind *Kind, fn RateFn) int {
	if entity < 0 {
		panic(fmt.Sprintf("ratefn: negative entity id %d", entity))
	}
	r.instances = append(r.instances, fn)
	slot := len(r.instances) - 1

	k := kind.Index()
	if k >= len(r.slots) {
		r.slots = append(r.slots, make([][]int, k+1-len(r.slots))...)
	}
	perEntity := r.slots[k]
	if int(entity) >= len(perEntity) {
		grown := make([]int, int(entity)+1, max(int(entity)+1, 2*len(perEntity)))
		copy(grown, perEntity)
		perEntity = grown
	}
	perEntity[entity] = slot + 1
	r.slots[k] = perEntity
	return slot
}

// Lookup returns the instance assigned to (entity, kind), or ErrNotFound.
func (r *Registry[E]) Lookup(entity E, kind *Kind) (RateFn, error) {
	k := kind.Index()
	if k < len(r.slots) && entity >= 0 && int(entity) < len(r.slots[k]) {
		if s := r.slots[k][entity]; s != 0 {
			return r.instances[s-1], nil
		}
	}
	return nil, fmt.Errorf("%w: entity %d, kind %q", ErrNotFound, entity, kind.Name())
}

// Len returns the number of instances ever assigned, including overwritten ones.
func (r *Registry[E]) Len() int {
	return len(r.instances)
}
