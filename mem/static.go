package mem

import "unsafe"

// NoHeap is the allocator behind the zero Ref: an environment with no memory at all.
// Every allocation fails with ErrNotEnoughMemory; freeing or resizing panics
// since nothing could have been allocated.
var NoHeap Allocator = &noHeap{}

// Nop backs borrowed views such as owned.MapSlice. It refuses to allocate or
// resize and ignores frees.
var Nop Allocator = &nop{}

// The unused fields keep the two instances distinct: pointers to zero-size
// values may compare equal.
type noHeap struct{ _ byte }

func (*noHeap) Alloc(uintptr, Align) (unsafe.Pointer, error) {
	return nil, ErrNotEnoughMemory
}

func (*noHeap) Free(unsafe.Pointer, uintptr, Align) {
	panic("mem: cannot free what hasn't been allocated")
}

func (*noHeap) Grow(unsafe.Pointer, uintptr, uintptr, Align) (unsafe.Pointer, error) {
	panic("mem: cannot grow what hasn't been allocated")
}

func (*noHeap) Shrink(unsafe.Pointer, uintptr, uintptr, Align) (unsafe.Pointer, error) {
	panic("mem: cannot shrink what hasn't been allocated")
}

func (*noHeap) SupportsContains() bool       { return true }
func (*noHeap) Contains(unsafe.Pointer) bool { return false }
func (*noHeap) Name() string                 { return "no-heap" }

type nop struct {
	Base
	_ byte
}

func (*nop) Alloc(uintptr, Align) (unsafe.Pointer, error) {
	return nil, ErrUnsupportedOperation
}

func (*nop) Free(unsafe.Pointer, uintptr, Align) {}

func (*nop) Name() string { return "nop-allocator" }
