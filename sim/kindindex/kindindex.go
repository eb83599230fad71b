// Package kindindex assigns stable small integer indices to named kinds.
//
// Kinds are grouped into categories (for example rate-function kinds and
// person properties); each category numbers its kinds 0, 1, 2, ... in order of
// first use. The index belongs to the name: handles declared separately under
// the same name in one category share it. Indices are process-wide, so independent simulations running in
// separate goroutines agree on them and can index dense per-kind slices
// without a shared lookup table.
//
// Thread-safety: Handle.Index is safe for concurrent use. Once claimed, an
// index is read with a single atomic load.
package kindindex

import (
	"sync"
	"sync/atomic"
)

// Category is a numbering space for kinds.
type Category struct {
	name string

	mu      sync.Mutex
	indices map[string]int
}

// NewCategory creates an empty category.
func NewCategory(name string) *Category {
	return &Category{name: name, indices: make(map[string]int)}
}

// Name returns the category name.
func (c *Category) Name() string {
	return c.name
}

// Size returns how many kinds have claimed an index so far.
func (c *Category) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.indices)
}

// claim returns the index of name, assigning the next free one if the name is
// new. The caller holds c.mu.
func (c *Category) claim(name string) int {
	if idx, ok := c.indices[name]; ok {
		return idx
	}
	idx := len(c.indices)
	c.indices[name] = idx
	return idx
}

// Handle caches the index of one kind within a category.
// The zero value is not usable; create handles with NewHandle.
type Handle struct {
	category *Category
	name     string

	// slot holds index+1; 0 means "not yet claimed".
	slot atomic.Int64
}

// NewHandle creates an unclaimed handle. The index is claimed lazily on the
// first call to Index.
func NewHandle(category *Category, name string) *Handle {
	return &Handle{category: category, name: name}
}

// Name returns the kind name.
func (h *Handle) Name() string {
	return h.name
}

// Category returns the category the handle numbers itself in.
func (h *Handle) Category() *Category {
	return h.category
}

// Index returns the kind's index, claiming the next free one on first use of
// the name. Exactly one index is ever assigned per name even when many
// goroutines race on first use, and indices within a category are assigned
// monotonically.
func (h *Handle) Index() int {
	if v := h.slot.Load(); v != 0 {
		return int(v - 1)
	}

	h.category.mu.Lock()
	defer h.category.mu.Unlock()

	idx := h.category.claim(h.name)
	h.slot.Store(int64(idx) + 1)
	return idx
}

// Claimed reports whether the handle already holds an index.
func (h *Handle) Claimed() bool {
	return h.slot.Load() != 0
}
