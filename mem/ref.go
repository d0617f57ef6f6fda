package mem

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Ref is a non-owning handle to an Allocator. It is what containers store and
// what collaborators receive. A Ref is cheap to copy and holds no state of its
// own; it must not outlive the allocator it refers to.
//
// The zero Ref refers to NoHeap.
type Ref struct {
	a Allocator
}

// RefTo returns a handle to a. A Ref passed in is returned unchanged so handles
// never nest, and a nil allocator yields the zero Ref.
func RefTo(a Allocator) Ref {
	switch v := a.(type) {
	case nil:
		return Ref{}
	case Ref:
		return v
	case *Ref:
		return *v
	default:
		return Ref{a: a}
	}
}

func (r Ref) target() Allocator {
	if r.a == nil {
		return NoHeap
	}
	return r.a
}

// Target returns the allocator the handle forwards to.
func (r Ref) Target() Allocator { return r.target() }

// Alloc forwards to the referenced allocator.
func (r Ref) Alloc(size uintptr, align Align) (unsafe.Pointer, error) {
	return r.target().Alloc(size, align)
}

// Free forwards to the referenced allocator.
func (r Ref) Free(ptr unsafe.Pointer, size uintptr, align Align) {
	r.target().Free(ptr, size, align)
}

// Grow forwards to the referenced allocator.
func (r Ref) Grow(ptr unsafe.Pointer, size, newSize uintptr, align Align) (unsafe.Pointer, error) {
	return r.target().Grow(ptr, size, newSize, align)
}

// Shrink forwards to the referenced allocator.
func (r Ref) Shrink(ptr unsafe.Pointer, size, newSize uintptr, align Align) (unsafe.Pointer, error) {
	return r.target().Shrink(ptr, size, newSize, align)
}

// SupportsContains forwards to the referenced allocator.
func (r Ref) SupportsContains() bool { return r.target().SupportsContains() }

// Contains forwards to the referenced allocator.
func (r Ref) Contains(ptr unsafe.Pointer) bool { return r.target().Contains(ptr) }

// Name forwards to the referenced allocator.
func (r Ref) Name() string { return r.target().Name() }

// AllocOrGrow allocates newSize bytes when size is 0 (ptr is ignored) and grows
// the block at ptr otherwise.
func (r Ref) AllocOrGrow(ptr unsafe.Pointer, size, newSize uintptr, align Align) (unsafe.Pointer, error) {
	if size == 0 {
		return r.Alloc(newSize, align)
	}
	return r.Grow(ptr, size, newSize, align)
}

// Same reports whether both handles refer to the same allocator instance.
// Pointer allocators compare by address. Allocators held by value compare
// with ==, and never match when their type is not comparable.
func (r Ref) Same(other Ref) bool {
	a, b := reflect.ValueOf(r.target()), reflect.ValueOf(other.target())
	switch {
	case a.Type() != b.Type():
		return false
	case a.Kind() == reflect.Pointer:
		return a.Pointer() == b.Pointer()
	case a.Comparable():
		return a.Equal(b)
	default:
		return false
	}
}

// String formats the handle as name@address.
func (r Ref) String() string {
	var addr uintptr
	if v := reflect.ValueOf(r.target()); v.Kind() == reflect.Pointer {
		addr = v.Pointer()
	}
	return fmt.Sprintf("%s@%X", r.Name(), addr)
}

var _ Allocator = Ref{}
