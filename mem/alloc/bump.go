package alloc

import (
	"unsafe"

	"github.com/joshuapare/halfbit/internal/num"
	"github.com/joshuapare/halfbit/mem"
)

// Bump is an append-only arena over a caller-supplied buffer. It uses a
// single cursor for O(1) allocation.
//
// Key characteristics:
//   - Alloc rounds the cursor address (not its offset) up to the alignment
//   - Free only reclaims the most recent block; other blocks become dead space
//   - Grow extends the most recent block in place when it is suitably aligned
//   - Shrink never moves a block
//
// This allocator is ideal for scoped work where everything is released at
// once with Reset.
type Bump struct {
	buf  []byte
	base unsafe.Pointer

	// cur is the offset of the next free byte; 0 <= cur <= len(buf).
	cur uintptr

	// peak is the highest value cur has reached since the last Reset.
	peak uintptr
}

// NewBump creates a bump allocator over buf. The allocator retains buf; the
// caller must not use it directly while blocks are live.
func NewBump(buf []byte) *Bump {
	return &Bump{
		buf:  buf,
		base: unsafe.Pointer(unsafe.SliceData(buf)),
	}
}

func (b *Bump) end() uintptr { return uintptr(len(b.buf)) }

// offset returns the offset of ptr from the start of the buffer.
func (b *Bump) offset(ptr unsafe.Pointer) uintptr {
	return uintptr(ptr) - uintptr(b.base)
}

func (b *Bump) isLast(ptr unsafe.Pointer, size uintptr) bool {
	off, ok := num.AddChecked(b.offset(ptr), size)
	return ok && off == b.cur
}

func (b *Bump) advance(to uintptr) {
	b.cur = to
	if to > b.peak {
		b.peak = to
	}
}

// Alloc carves size bytes from the cursor, aligned to align.
func (b *Bump) Alloc(size uintptr, align mem.Align) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, mem.ErrUnsupportedSize
	}
	addr := uintptr(b.base) + b.cur
	aligned, ok := mem.AlignUp(addr, align)
	if !ok {
		return nil, mem.ErrNotEnoughMemory
	}
	start := aligned - uintptr(b.base)
	next, ok := num.AddChecked(start, size)
	if !ok || next > b.end() {
		return nil, mem.ErrNotEnoughMemory
	}
	b.advance(next)
	return unsafe.Add(b.base, start), nil
}

// Free rewinds the cursor when ptr is the most recent block and ignores any
// other block.
func (b *Bump) Free(ptr unsafe.Pointer, size uintptr, _ mem.Align) {
	if b.isLast(ptr, size) {
		b.cur -= size
	}
}

// Grow extends the most recent block in place, failing with
// mem.ErrNotEnoughMemory when the buffer is exhausted. Any other block is
// moved to a fresh allocation and the old one is left behind.
func (b *Bump) Grow(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	mustGrow(size, newSize)
	if b.isLast(ptr, size) && align.IsPtrAligned(ptr) {
		extra := newSize - size
		if extra > b.end()-b.cur {
			return nil, mem.ErrNotEnoughMemory
		}
		b.advance(b.cur + extra)
		return ptr, nil
	}
	p, err := b.Alloc(newSize, align)
	if err != nil {
		return nil, err
	}
	copy(unsafe.Slice((*byte)(p), size), unsafe.Slice((*byte)(ptr), size))
	return p, nil
}

// Shrink returns ptr unchanged, rewinding the cursor when ptr is the most
// recent block.
func (b *Bump) Shrink(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	mustShrink(size, newSize)
	if !align.IsPtrAligned(ptr) {
		return nil, mem.ErrUnsupportedAlignment
	}
	if b.isLast(ptr, size) {
		b.cur -= size - newSize
	}
	return ptr, nil
}

// SupportsContains reports true.
func (*Bump) SupportsContains() bool { return true }

// Contains reports whether ptr lies inside the buffer.
func (b *Bump) Contains(ptr unsafe.Pointer) bool {
	addr := uintptr(ptr)
	return uintptr(b.base) <= addr && addr < uintptr(b.base)+b.end()
}

// Name returns "bump-allocator".
func (*Bump) Name() string { return "bump-allocator" }

// SpaceLeft returns the number of bytes between the cursor and the end of the buffer.
func (b *Bump) SpaceLeft() uintptr { return b.end() - b.cur }

// Used returns the cursor offset, including alignment padding and dead blocks.
func (b *Bump) Used() uintptr { return b.cur }

// Peak returns the highest cursor offset since creation or the last Reset.
func (b *Bump) Peak() uintptr { return b.peak }

// Cap returns the buffer size.
func (b *Bump) Cap() uintptr { return b.end() }

// Reset rewinds the cursor to the start of the buffer. Every outstanding
// block becomes invalid.
func (b *Bump) Reset() {
	b.cur = 0
	b.peak = 0
}

var _ mem.Allocator = (*Bump)(nil)
