package alloc

import (
	"unsafe"

	"github.com/joshuapare/halfbit/mem"
)

// Null supports no allocation at all. It differs from mem.NoHeap in the error
// it reports: the operation is unsupported rather than out of memory.
type Null struct {
	_ byte
}

// NewNull returns a Null allocator.
func NewNull() *Null { return &Null{} }

// Alloc fails with mem.ErrUnsupportedOperation.
func (*Null) Alloc(uintptr, mem.Align) (unsafe.Pointer, error) {
	return nil, mem.ErrUnsupportedOperation
}

// Free panics: Null never hands out blocks.
func (*Null) Free(unsafe.Pointer, uintptr, mem.Align) {
	panic("alloc: cannot free what hasn't been allocated")
}

// Grow panics: Null never hands out blocks.
func (*Null) Grow(unsafe.Pointer, uintptr, uintptr, mem.Align) (unsafe.Pointer, error) {
	panic("alloc: cannot grow what hasn't been allocated")
}

// Shrink panics: Null never hands out blocks.
func (*Null) Shrink(unsafe.Pointer, uintptr, uintptr, mem.Align) (unsafe.Pointer, error) {
	panic("alloc: cannot shrink what hasn't been allocated")
}

func (*Null) SupportsContains() bool       { return true }
func (*Null) Contains(unsafe.Pointer) bool { return false }

// Name returns "no-sup-allocator".
func (*Null) Name() string { return "no-sup-allocator" }

var _ mem.Allocator = (*Null)(nil)
