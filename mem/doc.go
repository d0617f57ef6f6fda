// Package mem defines the allocator capability used by every container in halfbit.
//
// # Overview
//
// Containers never allocate from the Go runtime directly. They are handed a
// Ref, a small copyable handle to some Allocator, and route every request for
// memory through it:
//
//   - Alloc(size, align): obtain a fresh block
//   - Free(ptr, size, align): return a block
//   - Grow / Shrink: resize a block, keeping its leading content
//   - Contains(ptr): ownership query, only valid when SupportsContains is true
//   - Name(): diagnostics
//
// # Sizing primitives
//
// Align is a power of two by construction: its zero value is 1 and every
// operation that could leave the power-of-two domain reports ok = false
// instead. Layout pairs a size with an Align and guarantees that the size
// rounded up to the alignment still fits in a uintptr.
//
//	l, err := mem.NewLayout(24, 8)
//	if err != nil {
//	    return err // *mem.LayoutError, unwraps to ErrInvalidAlignment or ErrAlignedSizeTooBig
//	}
//
// # Partial allocators
//
// Allocators only implement what they support. Embedding Base supplies the
// rest: Grow and Shrink report ErrUnsupportedOperation, while Free and
// Contains panic because calling them on an allocator that never handed out
// the block is a bug in the caller.
//
// # Default handles
//
// The zero Ref refers to NoHeap, which fails every allocation with
// ErrNotEnoughMemory. Nop backs borrowed views: it refuses to allocate and
// ignores frees.
//
// # Garbage collector
//
// Memory returned by an Allocator is not scanned by the Go garbage collector.
// Values stored in it must not hold Go pointers; see HoldsPointers.
//
// # Thread Safety
//
// Nothing in this package or in the allocators built on it is safe for
// concurrent use. An allocator, and every container built from it, must stay
// on one goroutine or be serialized externally.
package mem
