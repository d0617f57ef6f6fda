package owned

import "github.com/joshuapare/halfbit/mem"

// Dropper is implemented by element types that hold resources of their own,
// such as a handle into another container. Drop runs once, right before the
// value's memory is released.
type Dropper interface {
	Drop()
}

// dropValue runs the value's Drop hook when *T implements Dropper.
func dropValue[T any](p *T) {
	if d, ok := any(p).(Dropper); ok {
		d.Drop()
	}
}

// mustBePointerFree panics when T cannot live in allocator memory.
func mustBePointerFree[T any](container string) {
	if mem.HoldsPointers[T]() {
		panic("owned: " + container + " element type holds Go pointers")
	}
}
