package alloc

import (
	"unsafe"

	"github.com/joshuapare/halfbit/internal/num"
	"github.com/joshuapare/halfbit/mem"
)

// HeapMaxAlign is the largest alignment Heap honours, matching what a C
// malloc guarantees.
var HeapMaxAlign = mem.MustAlign(2 * unsafe.Sizeof(uintptr(0)))

// HeapStats summarizes Heap activity.
type HeapStats struct {
	LiveBlocks int     // blocks allocated and not yet freed
	LiveBytes  uintptr // bytes requested by live blocks
	TotalAlloc int     // Alloc and moving Grow calls that succeeded
}

// Heap allocates from the Go runtime heap with malloc semantics. Grow always
// moves the block and Shrink keeps it. Freed blocks are reclaimed by the
// garbage collector once nothing else refers to them.
type Heap struct {
	// blocks keeps every live backing array reachable, keyed by block address.
	blocks map[uintptr][]byte
	stats  HeapStats
}

// NewHeap creates a Heap allocator.
func NewHeap() *Heap {
	return &Heap{blocks: make(map[uintptr][]byte)}
}

// Alloc returns size zeroed bytes aligned to align.
func (h *Heap) Alloc(size uintptr, align mem.Align) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, mem.ErrUnsupportedSize
	}
	if align.Get() > HeapMaxAlign.Get() {
		return nil, mem.ErrUnsupportedAlignment
	}
	total, ok := num.AddChecked(size, align.Mask())
	if !ok || total > num.MaxCount(1) {
		return nil, mem.ErrNotEnoughMemory
	}
	backing := make([]byte, total)
	base := unsafe.Pointer(unsafe.SliceData(backing))
	aligned, _ := mem.AlignUp(uintptr(base), align)
	p := unsafe.Add(base, aligned-uintptr(base))

	h.blocks[uintptr(p)] = backing
	h.stats.LiveBlocks++
	h.stats.LiveBytes += size
	h.stats.TotalAlloc++
	return p, nil
}

// Free forgets the block. Freeing a block Heap did not issue panics.
func (h *Heap) Free(ptr unsafe.Pointer, size uintptr, _ mem.Align) {
	if _, ok := h.blocks[uintptr(ptr)]; !ok {
		panic("alloc: heap block not allocated here")
	}
	delete(h.blocks, uintptr(ptr))
	h.stats.LiveBlocks--
	h.stats.LiveBytes -= size
}

// Grow reallocates the block and copies its content.
func (h *Heap) Grow(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	mustGrow(size, newSize)
	p, err := h.Alloc(newSize, align)
	if err != nil {
		return nil, err
	}
	copy(unsafe.Slice((*byte)(p), size), unsafe.Slice((*byte)(ptr), size))
	h.Free(ptr, size, align)
	return p, nil
}

// Shrink keeps the block where it is and only adjusts accounting.
func (h *Heap) Shrink(ptr unsafe.Pointer, size, newSize uintptr, _ mem.Align) (unsafe.Pointer, error) {
	mustShrink(size, newSize)
	if _, ok := h.blocks[uintptr(ptr)]; !ok {
		panic("alloc: heap block not allocated here")
	}
	h.stats.LiveBytes -= size - newSize
	return ptr, nil
}

// SupportsContains reports false.
func (*Heap) SupportsContains() bool { return false }

// Contains panics; Heap cannot answer ownership queries.
func (*Heap) Contains(unsafe.Pointer) bool {
	panic("alloc: heap does not support contains")
}

// Name returns "go-heap".
func (*Heap) Name() string { return "go-heap" }

// Stats returns a snapshot of the allocation counters.
func (h *Heap) Stats() HeapStats { return h.stats }

var _ mem.Allocator = (*Heap)(nil)
