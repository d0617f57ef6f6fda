package owned

import (
	"unsafe"

	"github.com/joshuapare/halfbit/mem"
)

// zeroSized is the address handed out for zero-sized values, which never
// touch the allocator.
var zeroSized byte

// Box owns a single value allocated from a mem.Ref.
type Box[T any] struct {
	ref mem.Ref
	ptr *T
}

// NewBox moves v into a block from ref. On failure nothing is stored and the
// allocator error is returned; v remains the caller's.
//
// Zero-sized values are boxed without calling the allocator, so this works
// even over mem.NoHeap.
func NewBox[T any](ref mem.Ref, v T) (*Box[T], error) {
	mustBePointerFree[T]("Box")
	l := mem.LayoutOf[T]()
	if !l.NonZero() {
		return &Box[T]{ref: ref, ptr: (*T)(unsafe.Pointer(&zeroSized))}, nil
	}
	p, err := ref.Alloc(l.Size(), l.Align())
	if err != nil {
		return nil, err
	}
	ptr := (*T)(p)
	*ptr = v
	return &Box[T]{ref: ref, ptr: ptr}, nil
}

func (b *Box[T]) live() *T {
	if b.ptr == nil {
		panic("owned: use of dropped Box")
	}
	return b.ptr
}

// Get returns a pointer to the boxed value. It is valid until Drop.
func (b *Box[T]) Get() *T { return b.live() }

// Value returns a copy of the boxed value.
func (b *Box[T]) Value() T { return *b.live() }

// Set overwrites the boxed value without running its Drop hook.
func (b *Box[T]) Set(v T) { *b.live() = v }

// Allocator returns the handle the box was allocated from.
func (b *Box[T]) Allocator() mem.Ref { return b.ref }

// Dropped reports whether Drop has run.
func (b *Box[T]) Dropped() bool { return b.ptr == nil }

// Drop runs the value's Drop hook and frees its block. Subsequent calls do nothing.
func (b *Box[T]) Drop() {
	if b.ptr == nil {
		return
	}
	dropValue(b.ptr)
	if l := mem.LayoutOf[T](); l.NonZero() {
		b.ref.Free(unsafe.Pointer(b.ptr), l.Size(), l.Align())
	}
	b.ptr = nil
}
