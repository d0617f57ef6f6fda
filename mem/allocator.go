package mem

import "unsafe"

// Allocator is the capability every memory source implements.
//
// Sizes passed to Free, Grow and Shrink are the sizes the block was last
// allocated or resized with; the alignment is the one it was allocated with.
// Passing a pointer the allocator never issued is a contract violation and
// may panic.
type Allocator interface {
	// Alloc returns a block of size bytes aligned to align. size must be nonzero;
	// allocators reject a zero size with ErrUnsupportedSize.
	Alloc(size uintptr, align Align) (unsafe.Pointer, error)

	// Free returns a block. It has no failure mode: misuse panics.
	Free(ptr unsafe.Pointer, size uintptr, align Align)

	// Grow resizes a block to newSize > size, preserving its first size bytes.
	// The returned pointer may differ from ptr. newSize <= size is a contract
	// violation and panics in the allocators of package alloc.
	Grow(ptr unsafe.Pointer, size, newSize uintptr, align Align) (unsafe.Pointer, error)

	// Shrink resizes a block to newSize < size. Content past newSize is lost.
	// newSize >= size is a contract violation, as for Grow.
	Shrink(ptr unsafe.Pointer, size, newSize uintptr, align Align) (unsafe.Pointer, error)

	// SupportsContains reports whether Contains may be called.
	SupportsContains() bool

	// Contains reports whether ptr lies in memory managed by the allocator.
	Contains(ptr unsafe.Pointer) bool

	// Name identifies the allocator in logs and reports.
	Name() string
}

// Base supplies the optional half of Allocator. Embed it and implement Alloc
// and Name; override the rest as supported.
type Base struct{}

// Free panics: an allocator without Free never handed out a block to return.
func (Base) Free(unsafe.Pointer, uintptr, Align) {
	panic("mem: free not implemented")
}

// Grow reports ErrUnsupportedOperation.
func (Base) Grow(unsafe.Pointer, uintptr, uintptr, Align) (unsafe.Pointer, error) {
	return nil, ErrUnsupportedOperation
}

// Shrink reports ErrUnsupportedOperation.
func (Base) Shrink(unsafe.Pointer, uintptr, uintptr, Align) (unsafe.Pointer, error) {
	return nil, ErrUnsupportedOperation
}

// SupportsContains reports false.
func (Base) SupportsContains() bool { return false }

// Contains panics; check SupportsContains first.
func (Base) Contains(unsafe.Pointer) bool {
	panic("mem: contains not implemented")
}
