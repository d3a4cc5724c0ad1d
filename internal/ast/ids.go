package ast

import "math"

// ID identifies a binding site, a reference, or a break target. IDs are
// unique within one IDAllocator and are never reused.
type ID uint32

// NoID marks the absence of an ID.
const NoID ID = 0

func (id ID) IsValid() bool { return id != NoID }

// IDAllocator hands out IDs for one compilation. The parser draws from it,
// and so does the desugarer when it introduces temporaries. It is not safe
// for concurrent use; parallel compilations use one allocator each.
type IDAllocator struct {
	last ID
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh ID. The first ID is 1.
func (a *IDAllocator) Next() ID {
	if a.last == math.MaxUint32 {
		panic("ast: ID space exhausted")
	}
	a.last++
	return a.last
}

// Count reports how many IDs were allocated so far; it is also the largest ID.
func (a *IDAllocator) Count() uint32 {
	return uint32(a.last)
}
