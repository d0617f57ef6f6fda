// Package alloc provides the concrete allocators behind mem.Allocator.
//
// # Overview
//
// Every allocator in this package hands out raw blocks through the
// mem.Allocator interface so that the owning containers in package owned can
// run on top of any of them. The allocators differ only in where memory comes
// from and which resize operations they can honour.
//
// # Implementations
//
// Bump: arena over a caller-supplied buffer
//
//   - O(1) allocation by advancing a cursor
//   - Free rewinds only the most recent block; everything else leaks until Reset
//   - Grow extends the most recent block in place, otherwise allocates and copies
//   - Contains is supported over the whole buffer
//
// Single: one outstanding block at the start of a caller buffer
//
//   - Alloc fails with mem.ErrOperationFailed while a block is live
//   - Free, Grow and Shrink validate pointer, size and alignment and panic on misuse
//
// Null: refuses every allocation with mem.ErrUnsupportedOperation
//
// Heap: the Go runtime heap, for hosted code and tests
//
// Mmap: anonymous private page mappings (unix only)
//
// Tracker: an auditing wrapper around any allocator that records live blocks,
// detects overlaps and reports leaks.
//
// # Usage Example
//
//	buf := make([]byte, 4096)
//	bump := alloc.NewBump(buf)
//	ref := mem.RefTo(bump)
//
//	v := owned.NewVector[uint32](ref)
//	defer v.Drop()
//	if err := v.Push(42); err != nil {
//	    return err
//	}
//
// # Caller Buffers
//
// Bump and Single keep a reference to the buffer they were built over, so the
// Go runtime keeps it alive for as long as the allocator is reachable. Blocks
// must not outlive the allocator.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/halfbit/mem: Allocator interface, Ref handle, errors
//   - github.com/joshuapare/halfbit/owned: containers built on allocators
package alloc
