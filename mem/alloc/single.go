package alloc

import (
	"unsafe"

	"github.com/joshuapare/halfbit/mem"
)

// Single serves exactly one outstanding block, always located at the start of
// the caller buffer. It suits containers that only ever hold one growable
// block, such as a lone Vector or String.
type Single struct {
	buf  []byte
	base unsafe.Pointer
	used uintptr
}

// NewSingle creates a single-shot allocator over buf.
func NewSingle(buf []byte) *Single {
	return &Single{
		buf:  buf,
		base: unsafe.Pointer(unsafe.SliceData(buf)),
	}
}

// check panics unless ptr, size and align describe the outstanding block.
func (s *Single) check(ptr unsafe.Pointer, size uintptr, align mem.Align) {
	switch {
	case s.used == 0:
		panic("alloc: cannot free what hasn't been allocated")
	case ptr != s.base:
		panic("alloc: bad pointer")
	case size != s.used:
		panic("alloc: bad size")
	case !align.IsPtrAligned(s.base):
		panic("alloc: bad alignment")
	}
}

// Alloc hands out the buffer when no block is outstanding.
func (s *Single) Alloc(size uintptr, align mem.Align) (unsafe.Pointer, error) {
	switch {
	case size == 0:
		return nil, mem.ErrUnsupportedSize
	case s.used != 0:
		return nil, mem.ErrOperationFailed
	case !align.IsPtrAligned(s.base):
		return nil, mem.ErrUnsupportedAlignment
	case size > uintptr(len(s.buf)):
		return nil, mem.ErrNotEnoughMemory
	}
	s.used = size
	return s.base, nil
}

// Free releases the outstanding block.
func (s *Single) Free(ptr unsafe.Pointer, size uintptr, align mem.Align) {
	s.check(ptr, size, align)
	s.used = 0
}

// Grow resizes the outstanding block in place.
func (s *Single) Grow(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	mustGrow(size, newSize)
	return s.resize(ptr, size, newSize, align)
}

// Shrink resizes the outstanding block in place.
func (s *Single) Shrink(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	mustShrink(size, newSize)
	return s.resize(ptr, size, newSize, align)
}

func (s *Single) resize(ptr unsafe.Pointer, size, newSize uintptr, align mem.Align) (unsafe.Pointer, error) {
	s.check(ptr, size, align)
	if newSize > uintptr(len(s.buf)) {
		return nil, mem.ErrNotEnoughMemory
	}
	s.used = newSize
	return ptr, nil
}

// SupportsContains reports true.
func (*Single) SupportsContains() bool { return true }

// Contains reports whether ptr lies inside the buffer, whether or not a block
// is outstanding.
func (s *Single) Contains(ptr unsafe.Pointer) bool {
	addr := uintptr(ptr)
	return uintptr(s.base) <= addr && addr < uintptr(s.base)+uintptr(len(s.buf))
}

// Name returns "single-alloc".
func (*Single) Name() string { return "single-alloc" }

// InUse returns the size of the outstanding block, 0 when none.
func (s *Single) InUse() uintptr { return s.used }

var _ mem.Allocator = (*Single)(nil)
